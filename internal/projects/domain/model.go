package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Project types accepted for Project.ProjectType.
const (
	TypeFrontend  = "frontend"
	TypeBackend   = "backend"
	TypeFullstack = "fullstack"
	TypeMobile    = "mobile"
	TypeWordpress = "wordpress"
	TypeAI        = "ai"
	TypeOther     = "other"
)

var projectTypes = map[string]bool{
	TypeFrontend:  true,
	TypeBackend:   true,
	TypeFullstack: true,
	TypeMobile:    true,
	TypeWordpress: true,
	TypeAI:        true,
	TypeOther:     true,
}

// Project is a portfolio entry. It is storage-agnostic and shared by the
// repository, service and HTTP layers.
type Project struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	ProjectType   string    `json:"projectType"`
	Technologies  []string  `json:"technologies"`
	ImageURL      string    `json:"imageUrl"`
	ImagePublicID string    `json:"imagePublicId"`
	ProjectURL    string    `json:"projectUrl"`
	GithubURL     string    `json:"githubUrl"`
	PrivacyPolicy string    `json:"privacyPolicy"`
	Featured      bool      `json:"featured"`
	Order         int       `json:"order"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasImage reports whether the project references an object-store asset.
func (p *Project) HasImage() bool {
	return p.ImagePublicID != ""
}

// SetImage records both halves of the image pair. An empty id clears both.
func (p *Project) SetImage(url, publicID string) {
	if publicID == "" {
		p.ImageURL, p.ImagePublicID = "", ""
		return
	}
	p.ImageURL, p.ImagePublicID = url, publicID
}

// Validate checks the invariants a persisted project must satisfy.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: please add a title", ErrValidation)
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title cannot be more than %d characters", ErrValidation, MaxTitleLength)
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: please add a description", ErrValidation)
	}
	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description cannot be more than %d characters", ErrValidation, MaxDescriptionLength)
	}
	if !projectTypes[p.ProjectType] {
		return fmt.Errorf("%w: %q is not a valid project type", ErrValidation, p.ProjectType)
	}
	if (p.ImageURL == "") != (p.ImagePublicID == "") {
		return fmt.Errorf("%w: imageUrl and imagePublicId must be set together", ErrValidation)
	}
	return nil
}

// Input is the strictly-typed result of normalizing a client payload.
// A nil pointer (or nil slice with TechnologiesSet false) means the field
// was not supplied.
type Input struct {
	Title           *string
	Description     *string
	ProjectType     *string
	Technologies    []string
	TechnologiesSet bool
	ProjectURL      *string
	GithubURL       *string
	PrivacyPolicy   *string
	Featured        *bool
	Order           *int
}

// NewProject builds a project with defaults applied, then overlays in.
func NewProject(in Input) *Project {
	p := &Project{
		ProjectType:  TypeFrontend,
		Technologies: []string{},
	}
	in.ApplyTo(p)
	return p
}

// ApplyTo merges the supplied fields of in into p. Slug and image fields are
// owned by the lifecycle manager and are never touched here.
func (in Input) ApplyTo(p *Project) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.ProjectType != nil {
		p.ProjectType = *in.ProjectType
	}
	if in.TechnologiesSet {
		p.Technologies = append([]string{}, in.Technologies...)
	}
	if in.ProjectURL != nil {
		p.ProjectURL = *in.ProjectURL
	}
	if in.GithubURL != nil {
		p.GithubURL = *in.GithubURL
	}
	if in.PrivacyPolicy != nil {
		p.PrivacyPolicy = *in.PrivacyPolicy
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Order != nil {
		p.Order = *in.Order
	}
}
