package service

import (
	"context"
	"errors"
	"testing"

	"github.com/craftfolio/craftfolio/internal/metrics"
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/testutil"
)

const (
	ownerID    = "01HOWNER00000000000000OWNER"
	intruderID = "01HINTRUDER000000000INTRUDE"
)

func newTestPortfolioService(t *testing.T) (*PortfolioService, *testutil.MemPortfolioStore) {
	t.Helper()
	store := testutil.NewMemPortfolioStore()
	return NewPortfolioService(store, nil), store
}

func basicInput() PortfolioInput {
	return PortfolioInput{
		TemplateID: "classic",
		Name:       "Main",
		Title:      "Backend Engineer",
		Bio:        "I build things.",
		Skills:     []string{"Go", "PostgreSQL"},
	}
}

func TestCreatePortfolio(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, ownerID, basicInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p.ID == "" {
		t.Error("created portfolio has no id")
	}
	if p.UserID != ownerID {
		t.Errorf("owner = %q, want %q", p.UserID, ownerID)
	}
	if p.Name != "Main" {
		t.Errorf("name = %q, want %q", p.Name, "Main")
	}
}

func TestCreatePortfolioDefaults(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	input := basicInput()
	input.Name = ""
	p, err := svc.Create(ctx, ownerID, input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name != model.DefaultPortfolioName {
		t.Errorf("name = %q, want default %q", p.Name, model.DefaultPortfolioName)
	}

	input.TemplateID = "  "
	if _, err := svc.Create(ctx, ownerID, input); !errors.Is(err, ErrMissingTemplateID) {
		t.Errorf("Create() without template error = %v, want ErrMissingTemplateID", err)
	}
}

func TestSaveCreatesWithoutID(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, ownerID, "", basicInput())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if p.ID == "" || p.UserID != ownerID {
		t.Errorf("saved portfolio = %+v", p)
	}

	// A second save without an id is a second document, not an upsert.
	q, err := svc.Save(ctx, ownerID, "", basicInput())
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if q.ID == p.ID {
		t.Error("save without id must always create a new document")
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, ownerID, basicInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	input := basicInput()
	input.Title = "Staff Engineer"
	input.Skills = []string{"Go"}

	updated, err := svc.Save(ctx, ownerID, p.ID, input)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if updated.ID != p.ID {
		t.Errorf("save changed the id: %q -> %q", p.ID, updated.ID)
	}
	if updated.Title != "Staff Engineer" {
		t.Errorf("title = %q, want overwritten value", updated.Title)
	}
	if len(updated.Skills) != 1 {
		t.Errorf("skills = %v, want overwritten value", updated.Skills)
	}
}

func TestSaveEnforcesOwnership(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, ownerID, basicInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Save(ctx, intruderID, p.ID, basicInput()); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Save() by non-owner error = %v, want ErrNotOwner", err)
	}
}

func TestGetByOwner(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	p, err := svc.GetByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("GetByOwner() error = %v", err)
	}
	if p != nil {
		t.Errorf("GetByOwner() with no documents = %+v, want nil", p)
	}

	if _, err := svc.Create(ctx, ownerID, basicInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second, err := svc.Create(ctx, ownerID, basicInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// Touch the second document so it is the most recently updated one.
	if _, err := svc.Update(ctx, second.ID, ownerID, PortfolioPatch{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := svc.GetByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("GetByOwner() error = %v", err)
	}
	if got == nil || got.ID != second.ID {
		t.Errorf("GetByOwner() = %v, want the most recently updated document", got)
	}
}

func TestGetByIDOwnership(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, ownerID, basicInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("owner can read", func(t *testing.T) {
		got, err := svc.GetByID(ctx, p.ID, ownerID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.ID != p.ID {
			t.Errorf("got id %q, want %q", got.ID, p.ID)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		if _, err := svc.GetByID(ctx, "not-a-ulid", ownerID); !errors.Is(err, ErrInvalidPortfolioID) {
			t.Errorf("error = %v, want ErrInvalidPortfolioID", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := svc.GetByID(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ", ownerID); !errors.Is(err, ErrPortfolioNotFound) {
			t.Errorf("error = %v, want ErrPortfolioNotFound", err)
		}
	})

	t.Run("other user's document is forbidden, not hidden", func(t *testing.T) {
		if _, err := svc.GetByID(ctx, p.ID, intruderID); !errors.Is(err, ErrNotOwner) {
			t.Errorf("error = %v, want ErrNotOwner", err)
		}
	})
}

func TestListByOwner(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, ownerID, basicInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, ownerID, basicInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	portfolios, err := svc.ListByOwner(ctx, ownerID, ownerID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(portfolios) != 2 {
		t.Errorf("listed %d portfolios, want 2", len(portfolios))
	}

	// Listing someone else's portfolios is rejected outright.
	if _, err := svc.ListByOwner(ctx, ownerID, intruderID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("ListByOwner() for other user error = %v, want ErrNotOwner", err)
	}

	// An empty result is an empty slice, not nil, so it encodes as [].
	empty, err := svc.ListByOwner(ctx, intruderID, intruderID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty listing = %#v, want []", empty)
	}
}

func TestListTemplates(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	empty, err := svc.ListTemplates(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty listing = %#v, want []", empty)
	}

	p, err := svc.Create(ctx, ownerID, basicInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	summaries, err := svc.ListTemplates(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("listed %d summaries, want 1", len(summaries))
	}
	if summaries[0].ID != p.ID || summaries[0].TemplateID != "classic" {
		t.Errorf("summary = %+v", summaries[0])
	}
}

func TestUpdatePortfolio(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, ownerID, basicInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	title := "Staff Engineer"
	skills := []string{"Go", "Redis", "PostgreSQL"}
	patch := PortfolioPatch{Title: &title, Skills: &skills}

	updated, err := svc.Update(ctx, p.ID, ownerID, patch)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
	if len(updated.Skills) != 3 {
		t.Errorf("skills = %v, want patched value", updated.Skills)
	}
	// Unpatched fields survive.
	if updated.Bio != "I build things." {
		t.Errorf("bio = %q, should be untouched", updated.Bio)
	}
	if updated.TemplateID != "classic" {
		t.Errorf("template = %q, should be untouched", updated.TemplateID)
	}

	if _, err := svc.Update(ctx, p.ID, intruderID, patch); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Update() by non-owner error = %v, want ErrNotOwner", err)
	}
}

func TestPortfolioMetrics(t *testing.T) {
	recorder := metrics.NewInMemory()
	svc := NewPortfolioService(testutil.NewMemPortfolioStore(), recorder)
	ctx := context.Background()

	p, err := svc.Create(ctx, ownerID, basicInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Save(ctx, ownerID, "", basicInput()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, ownerID, PortfolioPatch{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := svc.Delete(ctx, p.ID, ownerID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	snap := recorder.Snapshot()
	if snap.PortfoliosCreated != 2 {
		t.Errorf("created = %d, want 2 (save without id creates)", snap.PortfoliosCreated)
	}
	if snap.PortfoliosSaved != 1 {
		t.Errorf("saved = %d, want 1", snap.PortfoliosSaved)
	}
	if snap.PortfoliosUpdated != 1 {
		t.Errorf("updated = %d, want 1", snap.PortfoliosUpdated)
	}
	if snap.PortfoliosDeleted != 1 {
		t.Errorf("deleted = %d, want 1", snap.PortfoliosDeleted)
	}
}

func TestDeletePortfolio(t *testing.T) {
	svc, _ := newTestPortfolioService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, ownerID, basicInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, p.ID, intruderID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Delete() by non-owner error = %v, want ErrNotOwner", err)
	}

	if err := svc.Delete(ctx, p.ID, ownerID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// The second delete reports absence rather than succeeding silently.
	if err := svc.Delete(ctx, p.ID, ownerID); !errors.Is(err, ErrPortfolioNotFound) {
		t.Errorf("second Delete() error = %v, want ErrPortfolioNotFound", err)
	}

	if _, err := svc.GetByID(ctx, p.ID, ownerID); !errors.Is(err, ErrPortfolioNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrPortfolioNotFound", err)
	}
}
