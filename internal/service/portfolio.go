package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/craftfolio/craftfolio/internal/metrics"
	"github.com/craftfolio/craftfolio/internal/model"
)

// Portfolio service errors.
var (
	ErrInvalidPortfolioID = errors.New("invalid portfolio id")
	ErrPortfolioNotFound  = errors.New("portfolio not found")
	ErrNotOwner           = errors.New("portfolio belongs to another user")
	ErrMissingTemplateID  = errors.New("template id is required")
)

// PortfolioStore is the document-store surface the portfolio service
// needs. *repository.Repository satisfies it.
type PortfolioStore interface {
	CreatePortfolio(ctx context.Context, p *model.Portfolio) error
	GetPortfolioByID(ctx context.Context, id string) (*model.Portfolio, error)
	GetLatestPortfolioByOwner(ctx context.Context, ownerID string) (*model.Portfolio, error)
	ListPortfoliosByOwner(ctx context.Context, ownerID string) ([]*model.Portfolio, error)
	ListPortfolioSummariesByOwner(ctx context.Context, ownerID string) ([]model.TemplateSummary, error)
	UpdatePortfolio(ctx context.Context, p *model.Portfolio) error
	DeletePortfolio(ctx context.Context, id string) error
}

// PortfolioService enforces ownership over portfolio CRUD.
// A user may own any number of documents; ownership is checked on every
// direct-id operation before anything is written or returned.
type PortfolioService struct {
	store   PortfolioStore
	metrics metrics.Recorder
}

// NewPortfolioService creates a PortfolioService.
func NewPortfolioService(store PortfolioStore, recorder metrics.Recorder) *PortfolioService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PortfolioService{store: store, metrics: recorder}
}

// PortfolioInput carries the mutable fields of a portfolio document.
type PortfolioInput struct {
	TemplateID string
	Name       string
	Title      string
	Bio        string
	Email      string
	Phone      string
	Location   string
	Skills     []string
	Experience []model.Experience
	Education  []model.Education
	Projects   []model.Project
	Thumbnail  string
}

// Create builds a new portfolio owned by ownerID.
func (s *PortfolioService) Create(ctx context.Context, ownerID string, input PortfolioInput) (*model.Portfolio, error) {
	if strings.TrimSpace(input.TemplateID) == "" {
		return nil, ErrMissingTemplateID
	}

	name := input.Name
	if name == "" {
		name = model.DefaultPortfolioName
	}

	now := time.Now().UTC()
	p := &model.Portfolio{
		ID:         ulid.Make().String(),
		UserID:     ownerID,
		TemplateID: input.TemplateID,
		Name:       name,
		Title:      input.Title,
		Bio:        input.Bio,
		Email:      input.Email,
		Phone:      input.Phone,
		Location:   input.Location,
		Skills:     input.Skills,
		Experience: input.Experience,
		Education:  input.Education,
		Projects:   input.Projects,
		Thumbnail:  input.Thumbnail,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreatePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("create portfolio: %w", err)
	}

	s.metrics.IncPortfolioCreated()

	return p, nil
}

// Save creates a document when no id is given, or overwrites all mutable
// fields of an existing owned document when one is. The explicit id
// replaces the old find-by-owner upsert, so there is no window in which
// two concurrent saves can both insert.
func (s *PortfolioService) Save(ctx context.Context, ownerID, id string, input PortfolioInput) (*model.Portfolio, error) {
	if id == "" {
		p, err := s.Create(ctx, ownerID, input)
		if err != nil {
			return nil, err
		}
		s.metrics.IncPortfolioSaved()
		return p, nil
	}

	p, err := s.fetchOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.TemplateID) == "" {
		return nil, ErrMissingTemplateID
	}

	p.TemplateID = input.TemplateID
	p.Name = input.Name
	if p.Name == "" {
		p.Name = model.DefaultPortfolioName
	}
	p.Title = input.Title
	p.Bio = input.Bio
	p.Email = input.Email
	p.Phone = input.Phone
	p.Location = input.Location
	p.Skills = input.Skills
	p.Experience = input.Experience
	p.Education = input.Education
	p.Projects = input.Projects
	p.Thumbnail = input.Thumbnail
	p.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdatePortfolio(ctx, p); err != nil {
		if isPortfolioMissing(err) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("save portfolio: %w", err)
	}

	s.metrics.IncPortfolioSaved()

	return p, nil
}

// GetByOwner returns the owner's most recently updated portfolio, or nil
// when none exists. Absence is not an error.
func (s *PortfolioService) GetByOwner(ctx context.Context, ownerID string) (*model.Portfolio, error) {
	p, err := s.store.GetLatestPortfolioByOwner(ctx, ownerID)
	if err != nil {
		if isPortfolioMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get portfolio by owner: %w", err)
	}
	return p, nil
}

// ListTemplates returns the template-picker projection of all the
// owner's portfolios.
func (s *PortfolioService) ListTemplates(ctx context.Context, ownerID string) ([]model.TemplateSummary, error) {
	summaries, err := s.store.ListPortfolioSummariesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if summaries == nil {
		summaries = []model.TemplateSummary{}
	}
	return summaries, nil
}

// GetByID returns a portfolio to its owner. Malformed ids fail before
// the store is consulted, so "doesn't exist" and "exists but not yours"
// stay distinguishable for well-formed ids.
func (s *PortfolioService) GetByID(ctx context.Context, id, requesterID string) (*model.Portfolio, error) {
	return s.fetchOwned(ctx, id, requesterID)
}

// ListByOwner returns all portfolios for ownerID, which must equal the
// requester: users may only list their own.
func (s *PortfolioService) ListByOwner(ctx context.Context, ownerID, requesterID string) ([]*model.Portfolio, error) {
	if ownerID != requesterID {
		return nil, ErrNotOwner
	}

	portfolios, err := s.store.ListPortfoliosByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	if portfolios == nil {
		portfolios = []*model.Portfolio{}
	}
	return portfolios, nil
}

// PortfolioPatch is a partial update; nil fields are left untouched.
// The owning user id is never patchable.
type PortfolioPatch struct {
	TemplateID *string
	Name       *string
	Title      *string
	Bio        *string
	Email      *string
	Phone      *string
	Location   *string
	Skills     *[]string
	Experience *[]model.Experience
	Education  *[]model.Education
	Projects   *[]model.Project
	Thumbnail  *string
}

// Update applies a partial patch to an owned portfolio and returns the
// updated document.
func (s *PortfolioService) Update(ctx context.Context, id, requesterID string, patch PortfolioPatch) (*model.Portfolio, error) {
	p, err := s.fetchOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	applyPatch(p, patch)
	p.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdatePortfolio(ctx, p); err != nil {
		if isPortfolioMissing(err) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("update portfolio: %w", err)
	}

	s.metrics.IncPortfolioUpdated()

	return p, nil
}

// Delete removes an owned portfolio. A second delete of the same id
// reports ErrPortfolioNotFound, not a no-op success.
func (s *PortfolioService) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := s.fetchOwned(ctx, id, requesterID); err != nil {
		return err
	}

	if err := s.store.DeletePortfolio(ctx, id); err != nil {
		if isPortfolioMissing(err) {
			return ErrPortfolioNotFound
		}
		return fmt.Errorf("delete portfolio: %w", err)
	}

	s.metrics.IncPortfolioDeleted()

	return nil
}

// fetchOwned loads a portfolio and enforces the ownership invariant.
func (s *PortfolioService) fetchOwned(ctx context.Context, id, requesterID string) (*model.Portfolio, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return nil, ErrInvalidPortfolioID
	}

	p, err := s.store.GetPortfolioByID(ctx, id)
	if err != nil {
		if isPortfolioMissing(err) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("get portfolio: %w", err)
	}

	if !p.IsOwnedBy(requesterID) {
		return nil, ErrNotOwner
	}

	return p, nil
}

func applyPatch(p *model.Portfolio, patch PortfolioPatch) {
	if patch.TemplateID != nil {
		p.TemplateID = *patch.TemplateID
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Skills != nil {
		p.Skills = *patch.Skills
	}
	if patch.Experience != nil {
		p.Experience = *patch.Experience
	}
	if patch.Education != nil {
		p.Education = *patch.Education
	}
	if patch.Projects != nil {
		p.Projects = *patch.Projects
	}
	if patch.Thumbnail != nil {
		p.Thumbnail = *patch.Thumbnail
	}
}
