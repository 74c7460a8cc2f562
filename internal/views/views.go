// Package views renders the HTML pages served next to the JSON API.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/crucial707/hci-users/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page names.
const (
	UserListing = "user_listing.html"
	UserDetail  = "user_detail.html"
)

// ListingData is the data for UserListing.
type ListingData struct {
	Viewer *models.User
	Users  []models.User
}

// DetailData is the data for UserDetail.
type DetailData struct {
	Viewer *models.User
	User   *models.User
}

// Renderer holds one parsed template set per page, each combined with the layout.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every embedded page.
func New() (*Renderer, error) {
	return parse(templateFS)
}

func parse(fsys fs.FS) (*Renderer, error) {
	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		t, err := template.ParseFS(fsys, layoutFile, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[path.Base(f)] = t
	}
	return r, nil
}

// Render executes page into a buffer and writes it with status 200. Nothing is written
// when rendering fails.
func (r *Renderer) Render(w http.ResponseWriter, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("render: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
