package web

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/costumeconnections/costumes/internal/model"
	"github.com/costumeconnections/costumes/internal/store"
	webembed "github.com/costumeconnections/costumes/web"
)

// Templates holds parsed HTML templates, one per page.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"statusName": func(status string) string {
			switch status {
			case model.StatusPending:
				return "Awaiting review"
			case model.StatusApproved:
				return "Listed"
			case model.StatusRejected:
				return "Rejected"
			case model.StatusSold:
				return "Sold"
			case "":
				return "No status"
			default:
				return status
			}
		},
		"thumb": func(imageURL string) string {
			if strings.HasPrefix(imageURL, photoPath+"?") {
				return imageURL + "&size=thumb"
			}
			return imageURL
		},
	}
}

var pages = []string{
	"index.html",
	"costumes.html",
	"costume.html",
	"sell.html",
	"admin_costumes.html",
	"admin_costume.html",
	"admin_edit.html",
}

// LoadTemplates parses every page template together with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.Templates

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl, err := template.New(page).Funcs(FuncMap()).Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		if tmpl, err = tmpl.Parse(string(pageBytes)); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a page with status 200.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a page into a buffer first so that a template error
// still produces a clean 500.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title string
	Admin bool
	Error string
}

// Costumes is the store contract the page handlers rely on.
type Costumes interface {
	ListApproved(ctx context.Context) ([]model.Costume, error)
	ListAll(ctx context.Context) ([]model.Costume, error)
	Get(ctx context.Context, id string) (*model.Costume, error)
	Create(ctx context.Context, c model.Costume) (string, error)
	Update(ctx context.Context, id string, c model.Costume) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	SetPhoto(ctx context.Context, id string, p *store.Photo) error
	GetPhoto(ctx context.Context, id string, thumb bool) ([]byte, string, error)
	Ping(ctx context.Context) error
}

// Server holds all dependencies for page handlers.
type Server struct {
	Store     Costumes
	Templates *Templates

	// PublicURL is the externally visible base URL used in share codes. When
	// empty it is derived from the request.
	PublicURL string
}

// NewServer loads the templates and returns a page server over the store.
func NewServer(costumes Costumes, publicURL string) (*Server, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		Store:     costumes,
		Templates: templates,
		PublicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}
