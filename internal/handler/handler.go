// Package handler contains chi HTTP handlers that translate browser
// requests to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"github.com/lenvers-aubagne/lenvers-web/internal/model"
	"github.com/lenvers-aubagne/lenvers-web/internal/service"
	"github.com/lenvers-aubagne/lenvers-web/internal/view"
)

const (
	qrSize = 256
	// catalogWait bounds how long the events section waits for a pending
	// catalog before rendering the placeholder.
	catalogWait = 2 * time.Second
)

// SiteHandler holds all HTTP handlers of the site.
type SiteHandler struct {
	log  zerolog.Logger
	svc  *service.SiteService
	view *view.Renderer
	qr   []byte
	now  func() time.Time

	catalogWait time.Duration
}

// NewSiteHandler constructs a SiteHandler. The QR code pointing at publicURL
// is encoded once here.
func NewSiteHandler(log zerolog.Logger, svc *service.SiteService, renderer *view.Renderer, publicURL string) (*SiteHandler, error) {
	qr, err := qrcode.Encode(publicURL, qrcode.Medium, qrSize)
	if err != nil {
		return nil, err
	}

	return &SiteHandler{
		log:  log.With().Str("component", "handler").Logger(),
		svc:  svc,
		view: renderer,
		qr:   qr,
		now:  time.Now,

		catalogWait: catalogWait,
	}, nil
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10) // 64 KB limit
	return r.ParseForm()
}

// backHome answers a form post with a redirect to the page (POST/redirect/GET).
func backHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Page handles GET /
// Renders the visit's current section with its banner and forms. The events
// section gives a pending catalog a short grace period instead of reloading.
func (h *SiteHandler) Page(w http.ResponseWriter, r *http.Request) {
	v := VisitFrom(r.Context())

	if v.Section() == model.SectionEvents {
		t := time.NewTimer(h.catalogWait)
		select {
		case <-v.CatalogDone():
		case <-t.C:
		case <-r.Context().Done():
		}
		t.Stop()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.view.Render(w, view.NewPage(v.Snapshot(), h.now())); err != nil {
		h.log.Error().Err(err).Msg("failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Navigate handles POST /navigate
// Makes the posted section current. Unknown sections land on home.
func (h *SiteHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	VisitFrom(r.Context()).Navigate(model.Section(r.PostForm.Get("section")))
	backHome(w, r)
}

// Reserve handles POST /reservation
func (h *SiteHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	// A party size that does not parse stays zero and fails validation.
	size, _ := strconv.Atoi(r.PostForm.Get("party_size"))
	req := model.ReservationRequest{
		Name:            r.PostForm.Get("name"),
		Email:           r.PostForm.Get("email"),
		Phone:           r.PostForm.Get("phone"),
		Date:            r.PostForm.Get("date"),
		Time:            r.PostForm.Get("time"),
		PartySize:       size,
		SpecialRequests: r.PostForm.Get("special_requests"),
	}

	_, err := h.svc.Reserve(r.Context(), VisitFrom(r.Context()), req)
	h.formDone(w, r, "reservation", err)
}

// Subscribe handles POST /newsletter
func (h *SiteHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := model.NewsletterRequest{
		Email: r.PostForm.Get("email"),
		Name:  r.PostForm.Get("name"),
	}

	_, err := h.svc.Subscribe(r.Context(), VisitFrom(r.Context()), req)
	h.formDone(w, r, "newsletter", err)
}

// Contact handles POST /contact
func (h *SiteHandler) Contact(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := model.ContactRequest{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
	}

	_, err := h.svc.Contact(r.Context(), VisitFrom(r.Context()), req)
	h.formDone(w, r, "contact", err)
}

// formDone redirects back to the page. An invalid form is not an error for
// the visitor: the buffered values are shown again and nothing was sent.
func (h *SiteHandler) formDone(w http.ResponseWriter, r *http.Request, form string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidForm):
		h.log.Debug().Err(err).Str("form", form).Msg("form rejected before submission")
	default:
		h.log.Error().Err(err).Str("form", form).Msg("form submission failed to start")
	}
	backHome(w, r)
}

// QRCode handles GET /qr.png
// Serves a QR code pointing at the site's public URL.
func (h *SiteHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(h.qr)
}

// HealthCheck handles GET /health
// The site itself is up whenever it answers; the backend state is reported
// alongside.
func (h *SiteHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	backend := "healthy"
	if !h.svc.BackendHealthy(r.Context()) {
		backend = "unreachable"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "backend": backend})
}
