package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/craftfolio/craftfolio/internal/model"
)

// ErrPortfolioNotFound is returned when no portfolio matches the query.
var ErrPortfolioNotFound = errors.New("portfolio not found")

const portfolioSelect = `
	SELECT id, user_id, template_id, name, title, bio, email, phone, location,
	       skills, experience, education, projects, thumbnail, created_at, updated_at
	FROM portfolios
`

// CreatePortfolio inserts a new portfolio document.
func (r *Repository) CreatePortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
		INSERT INTO portfolios (id, user_id, template_id, name, title, bio, email, phone, location,
		                        skills, experience, education, projects, thumbnail, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	sections, err := marshalSections(p)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.TemplateID,
		p.Name,
		p.Title,
		p.Bio,
		p.Email,
		p.Phone,
		p.Location,
		sections.skills,
		sections.experience,
		sections.education,
		sections.projects,
		p.Thumbnail,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	return nil
}

// GetPortfolioByID retrieves a portfolio by its ID.
func (r *Repository) GetPortfolioByID(ctx context.Context, id string) (*model.Portfolio, error) {
	query := portfolioSelect + ` WHERE id = $1`

	p, err := scanPortfolio(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio by ID: %w", err)
	}

	return p, nil
}

// GetLatestPortfolioByOwner retrieves the owner's most recently updated
// portfolio. Absence is reported as ErrPortfolioNotFound; the service
// layer translates that into an explicit empty result.
func (r *Repository) GetLatestPortfolioByOwner(ctx context.Context, ownerID string) (*model.Portfolio, error) {
	query := portfolioSelect + ` WHERE user_id = $1 ORDER BY updated_at DESC, id DESC LIMIT 1`

	p, err := scanPortfolio(r.pool.QueryRow(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio by owner: %w", err)
	}

	return p, nil
}

// ListPortfoliosByOwner retrieves all of the owner's portfolios, newest
// first.
func (r *Repository) ListPortfoliosByOwner(ctx context.Context, ownerID string) ([]*model.Portfolio, error) {
	query := portfolioSelect + ` WHERE user_id = $1 ORDER BY updated_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*model.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}

	return portfolios, nil
}

// ListPortfolioSummariesByOwner retrieves the template-picker projection
// of all the owner's portfolios.
func (r *Repository) ListPortfolioSummariesByOwner(ctx context.Context, ownerID string) ([]model.TemplateSummary, error) {
	query := `
		SELECT id, template_id, name, title, thumbnail, updated_at
		FROM portfolios
		WHERE user_id = $1
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio summaries: %w", err)
	}
	defer rows.Close()

	var summaries []model.TemplateSummary
	for rows.Next() {
		var s model.TemplateSummary
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.Name, &s.Title, &s.Thumbnail, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio summaries: %w", err)
	}

	return summaries, nil
}

// UpdatePortfolio overwrites the mutable fields of a portfolio.
// user_id and created_at are never touched.
func (r *Repository) UpdatePortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
		UPDATE portfolios
		SET template_id = $2, name = $3, title = $4, bio = $5, email = $6, phone = $7,
		    location = $8, skills = $9, experience = $10, education = $11, projects = $12,
		    thumbnail = $13, updated_at = $14
		WHERE id = $1
	`

	sections, err := marshalSections(p)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.TemplateID,
		p.Name,
		p.Title,
		p.Bio,
		p.Email,
		p.Phone,
		p.Location,
		sections.skills,
		sections.experience,
		sections.education,
		sections.projects,
		p.Thumbnail,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPortfolioNotFound
	}

	return nil
}

// DeletePortfolio removes a portfolio by ID.
func (r *Repository) DeletePortfolio(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPortfolioNotFound
	}

	return nil
}

// sectionJSON carries the JSONB-encoded list columns of a portfolio row.
type sectionJSON struct {
	skills     []byte
	experience []byte
	education  []byte
	projects   []byte
}

func marshalSections(p *model.Portfolio) (*sectionJSON, error) {
	skills, err := json.Marshal(emptyIfNil(p.Skills))
	if err != nil {
		return nil, fmt.Errorf("marshal skills: %w", err)
	}
	experience, err := json.Marshal(emptyExperience(p.Experience))
	if err != nil {
		return nil, fmt.Errorf("marshal experience: %w", err)
	}
	education, err := json.Marshal(emptyEducation(p.Education))
	if err != nil {
		return nil, fmt.Errorf("marshal education: %w", err)
	}
	projects, err := json.Marshal(emptyProjects(p.Projects))
	if err != nil {
		return nil, fmt.Errorf("marshal projects: %w", err)
	}

	return &sectionJSON{
		skills:     skills,
		experience: experience,
		education:  education,
		projects:   projects,
	}, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyExperience(s []model.Experience) []model.Experience {
	if s == nil {
		return []model.Experience{}
	}
	return s
}

func emptyEducation(s []model.Education) []model.Education {
	if s == nil {
		return []model.Education{}
	}
	return s
}

func emptyProjects(s []model.Project) []model.Project {
	if s == nil {
		return []model.Project{}
	}
	return s
}

// scanPortfolio scans a portfolio row from a QueryRow or Rows source.
func scanPortfolio(row pgx.Row) (*model.Portfolio, error) {
	var (
		p          model.Portfolio
		skills     []byte
		experience []byte
		education  []byte
		projects   []byte
	)

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.TemplateID,
		&p.Name,
		&p.Title,
		&p.Bio,
		&p.Email,
		&p.Phone,
		&p.Location,
		&skills,
		&experience,
		&education,
		&projects,
		&p.Thumbnail,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(skills, &p.Skills); err != nil {
		return nil, fmt.Errorf("unmarshal skills: %w", err)
	}
	if err := json.Unmarshal(experience, &p.Experience); err != nil {
		return nil, fmt.Errorf("unmarshal experience: %w", err)
	}
	if err := json.Unmarshal(education, &p.Education); err != nil {
		return nil, fmt.Errorf("unmarshal education: %w", err)
	}
	if err := json.Unmarshal(projects, &p.Projects); err != nil {
		return nil, fmt.Errorf("unmarshal projects: %w", err)
	}

	return &p, nil
}
