package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/vilaca/gh-lookup/internal/domain"
	"github.com/vilaca/gh-lookup/internal/theme"
)

// Region is the rendered content of one display area.
// A hidden region carries no markup.
type Region struct {
	HTML   template.HTML
	Hidden bool
}

// HiddenRegion is an empty, hidden display area.
var HiddenRegion = Region{Hidden: true}

// PageData is everything the full page template needs.
type PageData struct {
	Theme        theme.Theme
	Username     string
	Generation   uint64
	Profile      Region
	Repositories Region
}

// Renderer turns domain data into markup.
// Implementations must be pure: same input, same output, no I/O beyond the writer.
type Renderer interface {
	RenderProfileCard(profile domain.Profile) (Region, error)
	RenderRepositoryList(repos []domain.Repository) (Region, error)
	RenderErrorState(message string) (Region, error)
	RenderPage(w io.Writer, data PageData) error
}

// HTMLRenderer implements Renderer with html/template.
type HTMLRenderer struct {
	templates *template.Template
}

// NewHTMLRenderer parses the embedded templates.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := loadTemplates(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{templates: tmpl}, nil
}

// loadTemplates parses every .html file under dir.
func loadTemplates(fsys fs.FS, dir string) (*template.Template, error) {
	tmpl := template.New("").Funcs(templateFuncs())

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if _, err := tmpl.New(path.Base(p)).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", p, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tmpl, nil
}

// RenderProfileCard renders the profile card.
func (r *HTMLRenderer) RenderProfileCard(profile domain.Profile) (Region, error) {
	return r.renderRegion("profile_card", profile)
}

// RenderRepositoryList renders one card per repository in order.
// An empty list yields a hidden region rather than an empty list.
func (r *HTMLRenderer) RenderRepositoryList(repos []domain.Repository) (Region, error) {
	if len(repos) == 0 {
		return HiddenRegion, nil
	}
	return r.renderRegion("repository_list", repos)
}

// RenderErrorState renders message in place of the profile card.
func (r *HTMLRenderer) RenderErrorState(message string) (Region, error) {
	return r.renderRegion("error_state", message)
}

// RenderPage renders the full page.
func (r *HTMLRenderer) RenderPage(w io.Writer, data PageData) error {
	if data.Theme == "" {
		data.Theme = theme.Default
	}
	return r.templates.ExecuteTemplate(w, "page", data)
}

func (r *HTMLRenderer) renderRegion(name string, data any) (Region, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Region{}, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return Region{HTML: template.HTML(buf.String())}, nil
}
