package view

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenvers-aubagne/lenvers-web/internal/model"
	"github.com/lenvers-aubagne/lenvers-web/internal/session"
)

var now = time.Date(2025, 2, 10, 18, 0, 0, 0, time.UTC)

func render(t *testing.T, s session.Snapshot) string {
	t.Helper()
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, NewPage(s, now)))
	return buf.String()
}

func snapshot(section model.Section) session.Snapshot {
	return session.Snapshot{Section: section, Reservation: model.NewReservationRequest()}
}

func TestRender_Sections(t *testing.T) {
	tests := []struct {
		section model.Section
		want    string
	}{
		{section: model.SectionHome, want: "Pourquoi L'envers ?"},
		{section: model.SectionAbout, want: "Notre Histoire"},
		{section: model.SectionEvents, want: "Nos Événements"},
		{section: model.SectionReservation, want: "Réserver votre table"},
		{section: model.SectionContact, want: "Nous contacter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.section), func(t *testing.T) {
			html := render(t, snapshot(tt.section))
			assert.Contains(t, html, tt.want)
			assert.Contains(t, html, `value="`+string(tt.section)+`" class="current"`)
			assert.Equal(t, 1, strings.Count(html, `<section class="page"`))
		})
	}
}

func TestRender_Events(t *testing.T) {
	s := snapshot(model.SectionEvents)
	s.Events = []model.Event{
		{ID: "1", Title: "Concert Jazz", Category: "Concert", Price: "15€", Date: "2025-02-15", Time: "20:00"},
		{ID: "2", Title: "Soirée Quiz", Category: "Animation", Date: "2025-02-22", Time: "19:30"},
	}

	html := render(t, s)

	assert.Equal(t, 2, strings.Count(html, `<article class="card event">`))
	assert.NotContains(t, html, CatalogPlaceholder)
	assert.Less(t, strings.Index(html, "Concert Jazz"), strings.Index(html, "Soirée Quiz"))
	assert.Contains(t, html, "15€")
	assert.Contains(t, html, "15/02/2025")
	assert.Contains(t, html, "20:00")
	assert.Contains(t, html, model.DefaultPrice)
}

func TestRender_EventsPlaceholder(t *testing.T) {
	html := render(t, snapshot(model.SectionEvents))

	assert.Contains(t, html, CatalogPlaceholder)
	assert.NotContains(t, html, `<article class="card event">`)
	assert.Contains(t, html, template.HTMLEscapeString(SubscribeLabel))
	assert.Contains(t, html, `name="name"`)
}

func TestRender_SubmitLabels(t *testing.T) {
	t.Run("reservation idle", func(t *testing.T) {
		html := render(t, snapshot(model.SectionReservation))
		assert.Contains(t, html, ReserveLabel)
		assert.NotContains(t, html, " disabled>")
	})

	t.Run("reservation loading", func(t *testing.T) {
		s := snapshot(model.SectionReservation)
		s.Loading = true
		html := render(t, s)
		assert.Contains(t, html, ReserveLoadingLabel)
		assert.Contains(t, html, " disabled>")
	})

	t.Run("contact loading", func(t *testing.T) {
		s := snapshot(model.SectionContact)
		s.Loading = true
		html := render(t, s)
		assert.Contains(t, html, ContactLoadingLabel)
		assert.NotContains(t, html, ContactLabel)
	})
}

func TestRender_BufferedValues(t *testing.T) {
	s := snapshot(model.SectionReservation)
	s.Reservation = model.ReservationRequest{
		Name:      "Camille <Martin>",
		Time:      "20:30",
		PartySize: 4,
	}

	html := render(t, s)

	assert.Contains(t, html, `value="Camille &lt;Martin&gt;"`)
	assert.Contains(t, html, `<option value="20:30" selected>`)
	assert.Contains(t, html, `<option value="4" selected>4 personnes</option>`)
	assert.Contains(t, html, `<option value="1">1 personne</option>`)
}

func TestRender_Notification(t *testing.T) {
	s := snapshot(model.SectionHome)
	s.Notification = &model.Notification{
		Text:      "Erreur de connexion. Veuillez réessayer.",
		Kind:      model.KindError,
		ExpiresAt: now.Add(3 * time.Second),
	}

	html := render(t, s)

	assert.Contains(t, html, `class="banner banner-error"`)
	assert.Contains(t, html, "Erreur de connexion. Veuillez réessayer.")
	assert.Contains(t, html, `style="animation-delay: 3000ms"`)
	assert.NotContains(t, html, `http-equiv="refresh"`)
}

func TestNewPage_Refresh(t *testing.T) {
	tests := []struct {
		name        string
		snap        session.Snapshot
		wantRefresh int
		wantDismiss int64
	}{
		{name: "idle", snap: session.Snapshot{}},
		{name: "submission in flight", snap: session.Snapshot{InFlight: true}, wantRefresh: 1},
		{
			name:        "notification",
			snap:        session.Snapshot{Notification: &model.Notification{ExpiresAt: now.Add(4200 * time.Millisecond)}},
			wantDismiss: 4200,
		},
		{
			name: "notification already due",
			snap: session.Snapshot{Notification: &model.Notification{ExpiresAt: now.Add(-time.Second)}},
		},
		{
			name:        "in flight with notification",
			snap:        session.Snapshot{InFlight: true, Notification: &model.Notification{ExpiresAt: now.Add(5 * time.Second)}},
			wantRefresh: 1,
			wantDismiss: 5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.snap, now)
			assert.Equal(t, tt.wantRefresh, p.Refresh)
			assert.Equal(t, tt.wantDismiss, p.DismissMS)
		})
	}
}

func TestRender_CatalogPendingOnFormSection(t *testing.T) {
	// An empty catalog alone never reloads the page under a half-filled form.
	for _, section := range []model.Section{model.SectionReservation, model.SectionContact, model.SectionEvents} {
		html := render(t, snapshot(section))
		assert.NotContains(t, html, `http-equiv="refresh"`, section)
	}
}

func TestRender_NoRefreshWhenIdle(t *testing.T) {
	html := render(t, snapshot(model.SectionHome))
	assert.NotContains(t, html, `http-equiv="refresh"`)
	assert.NotContains(t, html, `class="banner`)
}
