package dto

import (
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/service"
)

// PortfolioRequest represents the request body for creating or saving a
// portfolio. ID is only honored by the save endpoint, where it selects
// the document to overwrite.
type PortfolioRequest struct {
	ID         string             `json:"id,omitempty"`
	TemplateID string             `json:"template_id"`
	Name       string             `json:"name"`
	Title      string             `json:"title"`
	Bio        string             `json:"bio"`
	Email      string             `json:"email"`
	Phone      string             `json:"phone"`
	Location   string             `json:"location"`
	Skills     []string           `json:"skills"`
	Experience []model.Experience `json:"experience"`
	Education  []model.Education  `json:"education"`
	Projects   []model.Project    `json:"projects"`
	Thumbnail  string             `json:"thumbnail"`
}

// ToInput converts the request into a service input.
func (r *PortfolioRequest) ToInput() service.PortfolioInput {
	return service.PortfolioInput{
		TemplateID: r.TemplateID,
		Name:       r.Name,
		Title:      r.Title,
		Bio:        r.Bio,
		Email:      r.Email,
		Phone:      r.Phone,
		Location:   r.Location,
		Skills:     r.Skills,
		Experience: r.Experience,
		Education:  r.Education,
		Projects:   r.Projects,
		Thumbnail:  r.Thumbnail,
	}
}

// UpdatePortfolioRequest represents a partial update; absent fields are
// left untouched.
type UpdatePortfolioRequest struct {
	TemplateID *string             `json:"template_id,omitempty"`
	Name       *string             `json:"name,omitempty"`
	Title      *string             `json:"title,omitempty"`
	Bio        *string             `json:"bio,omitempty"`
	Email      *string             `json:"email,omitempty"`
	Phone      *string             `json:"phone,omitempty"`
	Location   *string             `json:"location,omitempty"`
	Skills     *[]string           `json:"skills,omitempty"`
	Experience *[]model.Experience `json:"experience,omitempty"`
	Education  *[]model.Education  `json:"education,omitempty"`
	Projects   *[]model.Project    `json:"projects,omitempty"`
	Thumbnail  *string             `json:"thumbnail,omitempty"`
}

// ToPatch converts the request into a service patch.
func (r *UpdatePortfolioRequest) ToPatch() service.PortfolioPatch {
	return service.PortfolioPatch{
		TemplateID: r.TemplateID,
		Name:       r.Name,
		Title:      r.Title,
		Bio:        r.Bio,
		Email:      r.Email,
		Phone:      r.Phone,
		Location:   r.Location,
		Skills:     r.Skills,
		Experience: r.Experience,
		Education:  r.Education,
		Projects:   r.Projects,
		Thumbnail:  r.Thumbnail,
	}
}
