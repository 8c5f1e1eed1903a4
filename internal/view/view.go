// Package view renders a visit as a full HTML page from embedded templates.
package view

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/lenvers-aubagne/lenvers-web/internal/model"
	"github.com/lenvers-aubagne/lenvers-web/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Submit button labels.
const (
	ReserveLabel        = "Confirmer la réservation"
	ReserveLoadingLabel = "Réservation en cours..."
	ContactLabel        = "Envoyer le message"
	ContactLoadingLabel = "Envoi en cours..."
	SubscribeLabel      = "S'inscrire"
	CatalogPlaceholder  = "Chargement des événements..."
)

// Page is the data handed to the layout.
type Page struct {
	session.Snapshot

	Sections        []model.Section
	TimeSlots       []string
	PartySizes      []int
	ContactSubjects []model.Option
	Today           string

	ReserveButton      string
	ContactButton      string
	SubscribeButton    string
	CatalogPlaceholder string

	// Refresh is the meta refresh delay in seconds; zero disables it.
	Refresh int
	// DismissMS is how long the notification banner stays on screen.
	DismissMS int64
}

// NewPage builds the page for snapshot s as seen at now. The page reloads
// every second only while one of the visit's form submissions awaits the
// backend; the notification banner hides itself when it expires.
func NewPage(s session.Snapshot, now time.Time) Page {
	p := Page{
		Snapshot:           s,
		Sections:           model.Sections,
		TimeSlots:          model.TimeSlots,
		PartySizes:         model.PartySizes,
		ContactSubjects:    model.ContactSubjects,
		Today:              now.Format("2006-01-02"),
		ReserveButton:      ReserveLabel,
		ContactButton:      ContactLabel,
		SubscribeButton:    SubscribeLabel,
		CatalogPlaceholder: CatalogPlaceholder,
	}
	if s.Loading {
		p.ReserveButton = ReserveLoadingLabel
		p.ContactButton = ContactLoadingLabel
	}

	if s.InFlight {
		p.Refresh = 1
	}
	if s.Notification != nil {
		p.DismissMS = max(0, s.Notification.ExpiresAt.Sub(now).Milliseconds())
	}
	return p
}

// Renderer executes the parsed layout.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"plural": func(n int) string {
			if n > 1 {
				return "s"
			}
			return ""
		},
		"dict": func(kv ...string) (map[string]string, error) {
			if len(kv)%2 != 0 {
				return nil, errors.New("dict: odd number of arguments")
			}
			m := make(map[string]string, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				m[kv[i]] = kv[i+1]
			}
			return m, nil
		},
	}

	tmpl, err := template.New("_root").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the full page.
func (r *Renderer) Render(w io.Writer, p Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "base", p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
