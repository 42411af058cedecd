package model

import "time"

// DefaultPortfolioName is applied when a document is created without a name.
const DefaultPortfolioName = "My Portfolio"

// Portfolio represents a user-authored portfolio document.
// UserID is immutable after creation and is the sole ownership
// determinant for every direct-id operation.
type Portfolio struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	TemplateID string       `json:"template_id"`
	Name       string       `json:"name"`
	Title      string       `json:"title,omitempty"`
	Bio        string       `json:"bio,omitempty"`
	Email      string       `json:"email,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Location   string       `json:"location,omitempty"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Projects   []Project    `json:"projects"`
	Thumbnail  string       `json:"thumbnail,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Experience is one entry of a portfolio's work history.
type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// Education is one entry of a portfolio's education history.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year"`
}

// Project is one entry of a portfolio's project list.
type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Link        string `json:"link"`
}

// IsOwnedBy reports whether the given user owns this portfolio.
func (p *Portfolio) IsOwnedBy(userID string) bool {
	return p.UserID == userID
}

// TemplateSummary is the projection returned by the template listing:
// enough to render a picker without shipping whole documents.
type TemplateSummary struct {
	ID         string    `json:"id"`
	TemplateID string    `json:"template_id"`
	Name       string    `json:"name"`
	Title      string    `json:"title,omitempty"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Summary projects the portfolio down to its template listing fields.
func (p *Portfolio) Summary() TemplateSummary {
	return TemplateSummary{
		ID:         p.ID,
		TemplateID: p.TemplateID,
		Name:       p.Name,
		Title:      p.Title,
		Thumbnail:  p.Thumbnail,
		UpdatedAt:  p.UpdatedAt,
	}
}
