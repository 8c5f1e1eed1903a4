// Package service implements the site's behaviour: the events catalog load
// and the three form flows, orchestrated between the HTTP handlers, the
// visit state and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/lenvers-aubagne/lenvers-web/internal/model"
	"github.com/lenvers-aubagne/lenvers-web/internal/repository"
	"github.com/lenvers-aubagne/lenvers-web/internal/session"
)

// Banner texts.
const (
	MsgReservationSuccess  = "Réservation confirmée ! Nous vous avons envoyé un email de confirmation."
	MsgReservationRejected = "Erreur lors de la réservation. Veuillez réessayer."
	MsgNewsletterSuccess   = "Merci pour votre inscription à notre newsletter !"
	MsgNewsletterFailed    = "Erreur lors de l'inscription."
	MsgContactSuccess      = "Votre message a été envoyé ! Nous vous répondrons rapidement."
	MsgContactRejected     = "Erreur lors de l'envoi. Veuillez réessayer."
	MsgConnection          = "Erreur de connexion. Veuillez réessayer."
)

// ErrInvalidForm is returned when a form misses a required field. Nothing is
// sent to the backend in that case.
var ErrInvalidForm = errors.New("invalid form")

// EventLister fetches the events catalog.
type EventLister interface {
	List(ctx context.Context) ([]model.Event, error)
}

// Pinger checks the backend's health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SiteService orchestrates the catalog and form operations of a visit.
type SiteService struct {
	log       zerolog.Logger
	events    EventLister
	pinger    Pinger
	metrics   *Metrics
	validator *validator.Validate

	reservation *Flow[model.ReservationRequest]
	newsletter  *Flow[model.NewsletterRequest]
	contact     *Flow[model.ContactRequest]
}

// NewSiteService constructs a SiteService with its dependencies.
func NewSiteService(
	log zerolog.Logger,
	events EventLister,
	submissions Submitter,
	pinger Pinger,
	metrics *Metrics,
) *SiteService {
	log = log.With().Str("component", "service").Logger()

	return &SiteService{
		log:       log,
		events:    events,
		pinger:    pinger,
		metrics:   metrics,
		validator: validator.New(validator.WithRequiredStructEnabled()),

		reservation: &Flow[model.ReservationRequest]{
			Name: "reservation",
			Path: repository.PathReservations,
			Gate: true,
			Messages: Messages{
				Success:   MsgReservationSuccess,
				Rejected:  MsgReservationRejected,
				Transport: MsgConnection,
			},
			Reset:     func(v *session.Visit) { v.SetReservation(model.NewReservationRequest()) },
			submitter: submissions,
			metrics:   metrics,
			log:       log,
		},
		newsletter: &Flow[model.NewsletterRequest]{
			Name: "newsletter",
			Path: repository.PathNewsletter,
			Messages: Messages{
				Success:   MsgNewsletterSuccess,
				Rejected:  MsgNewsletterFailed,
				Transport: MsgNewsletterFailed,
			},
			Reset:     func(v *session.Visit) { v.SetNewsletterEmail("") },
			submitter: submissions,
			metrics:   metrics,
			log:       log,
		},
		contact: &Flow[model.ContactRequest]{
			Name: "contact",
			Path: repository.PathContact,
			Gate: true,
			Messages: Messages{
				Success:   MsgContactSuccess,
				Rejected:  MsgContactRejected,
				Transport: MsgConnection,
			},
			Reset:     func(v *session.Visit) { v.SetContact(model.ContactRequest{}) },
			submitter: submissions,
			metrics:   metrics,
			log:       log,
		},
	}
}

// LoadCatalog fetches the events for v unless a load was already started
// for that visit. Failures are logged and leave the catalog empty; there is
// no retry.
func (s *SiteService) LoadCatalog(ctx context.Context, v *session.Visit) {
	if !v.ClaimCatalog() {
		return
	}
	s.loadCatalog(ctx, v)
}

// StartCatalog starts the visit's catalog load in the background, once.
// The load is bound to the visit's lifetime: evicting the visit cancels it.
// It does not count as a pending request, so the page neither refreshes
// for it nor keeps the visit from eviction.
func (s *SiteService) StartCatalog(v *session.Visit) {
	if !v.ClaimCatalog() {
		return
	}
	go s.loadCatalog(v.Context(), v)
}

func (s *SiteService) loadCatalog(ctx context.Context, v *session.Visit) {
	defer v.SettleCatalog()

	events, err := s.events.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("visit", v.ID.String()).Msg("Erreur lors du chargement des événements")
		s.metrics.observeCatalog("error")
		return
	}
	v.SetEvents(events)
	s.metrics.observeCatalog("success")
	s.log.Debug().Int("events", len(events)).Str("visit", v.ID.String()).Msg("catalog loaded")
}

// Reserve stores req as the visit's reservation buffer and, if every
// required field is present, submits it in the background. The result is
// delivered on the returned channel once the backend has answered.
func (s *SiteService) Reserve(ctx context.Context, v *session.Visit, req model.ReservationRequest) (<-chan Result, error) {
	v.SetReservation(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.reservation.Start(ctx, v, req), nil
}

// Subscribe stores the newsletter email and submits it in the background.
// It does not touch the loading flag.
func (s *SiteService) Subscribe(ctx context.Context, v *session.Visit, req model.NewsletterRequest) (<-chan Result, error) {
	v.SetNewsletterEmail(req.Email)
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.newsletter.Start(ctx, v, req), nil
}

// Contact stores req as the visit's contact buffer and submits it in the
// background.
func (s *SiteService) Contact(ctx context.Context, v *session.Visit, req model.ContactRequest) (<-chan Result, error) {
	v.SetContact(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.contact.Start(ctx, v, req), nil
}

// BackendHealthy reports whether the backend answers its health check.
func (s *SiteService) BackendHealthy(ctx context.Context) bool {
	if err := s.pinger.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("backend health check failed")
		return false
	}
	return true
}

func (s *SiteService) validate(form any) error {
	if err := s.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s fails %q", ErrInvalidForm, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return nil
}
