package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProject() *Project {
	return &Project{
		Title:       "Portfolio",
		Description: "Personal site",
		ProjectType: TypeFullstack,
	}
}

func TestProject_Validate(t *testing.T) {
	assert.NoError(t, validProject().Validate())

	cases := map[string]func(p *Project){
		"missing title":       func(p *Project) { p.Title = "   " },
		"long title":          func(p *Project) { p.Title = strings.Repeat("a", MaxTitleLength+1) },
		"missing description": func(p *Project) { p.Description = "" },
		"long description":    func(p *Project) { p.Description = strings.Repeat("d", MaxDescriptionLength+1) },
		"unknown type":        func(p *Project) { p.ProjectType = "desktop" },
		"half image pair":     func(p *Project) { p.ImageURL = "https://cdn/x.png" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validProject()
			mutate(p)
			assert.ErrorIs(t, p.Validate(), ErrValidation)
		})
	}
}

func TestProject_Validate_CountsRunes(t *testing.T) {
	p := validProject()
	p.Title = strings.Repeat("ş", MaxTitleLength)
	assert.NoError(t, p.Validate())
}

func TestNewProject_Defaults(t *testing.T) {
	title := "Hello"
	p := NewProject(Input{Title: &title})

	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, TypeFrontend, p.ProjectType)
	assert.NotNil(t, p.Technologies)
	assert.False(t, p.Featured)
	assert.Equal(t, 0, p.Order)
}

func TestInput_ApplyTo_LeavesUnsetFields(t *testing.T) {
	p := validProject()
	p.Slug = "portfolio"
	p.SetImage("https://cdn/a.png", "a")
	p.Technologies = []string{"Go"}

	order := 4
	Input{Order: &order}.ApplyTo(p)

	assert.Equal(t, 4, p.Order)
	assert.Equal(t, "Portfolio", p.Title)
	assert.Equal(t, "portfolio", p.Slug)
	assert.Equal(t, []string{"Go"}, p.Technologies)
	assert.True(t, p.HasImage())
}

func TestSetImage_ClearsPair(t *testing.T) {
	p := validProject()
	p.SetImage("https://cdn/a.png", "a")
	p.SetImage("https://cdn/ignored.png", "")

	assert.Empty(t, p.ImageURL)
	assert.Empty(t, p.ImagePublicID)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, KindValidationFailed, Kind(fmt.Errorf("%w: title", ErrValidation)))
	assert.Equal(t, KindNotFound, Kind(ErrNotFound))
	assert.Equal(t, KindAssetUploadFailed, Kind(fmt.Errorf("%w: s3 down", ErrAssetUpload)))
	assert.Equal(t, KindDuplicateKey, Kind(fmt.Errorf("insert: %w", ErrDuplicateKey)))
	assert.Equal(t, KindSlugConflictUnresolvable, Kind(ErrSlugConflict))
	assert.Equal(t, KindStoreUnavailable, Kind(fmt.Errorf("%w: find: %w", ErrStoreUnavailable, errors.New("conn refused"))))
	assert.Equal(t, KindInternal, Kind(errors.New("boom")))
}
