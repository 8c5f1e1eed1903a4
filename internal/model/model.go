// Package model defines the core domain types for the L'envers site.
package model

import "time"

// Section is one of the fixed logical pages the site can display.
type Section string

const (
	SectionHome        Section = "home"
	SectionAbout       Section = "about"
	SectionEvents      Section = "events"
	SectionReservation Section = "reservation"
	SectionContact     Section = "contact"
)

// Sections lists every section in navigation order.
var Sections = []Section{SectionHome, SectionAbout, SectionEvents, SectionReservation, SectionContact}

// ParseSection maps a raw value to a Section. Unknown values fall back to home.
func ParseSection(raw string) Section {
	for _, s := range Sections {
		if string(s) == raw {
			return s
		}
	}
	return SectionHome
}

// Label returns the navigation label shown for the section.
func (s Section) Label() string {
	switch s {
	case SectionAbout:
		return "À propos"
	case SectionEvents:
		return "Événements"
	case SectionReservation:
		return "Réserver"
	case SectionContact:
		return "Contact"
	default:
		return "Accueil"
	}
}

// DefaultPrice is displayed when the backend omits an event's price.
const DefaultPrice = "Entrée libre"

// Event is a published event as served by the backend. Read-only on this side.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ImageURL    string `json:"image_url,omitempty"`
}

// DisplayPrice returns the price label, defaulting to free entry.
func (e Event) DisplayPrice() string {
	if e.Price == "" {
		return DefaultPrice
	}
	return e.Price
}

// DisplayDate formats the event date the French way (02/01/2006).
// A date that does not parse is shown as received.
func (e Event) DisplayDate() string {
	d, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return e.Date
	}
	return d.Format("02/01/2006")
}

// EventsResponse is the payload of GET /api/events.
type EventsResponse struct {
	Events []Event `json:"events"`
}

// ReservationRequest is the payload for booking a table.
type ReservationRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required"`
	PartySize       int    `json:"party_size" validate:"required,min=1,max=10"`
	SpecialRequests string `json:"special_requests"`
}

// NewReservationRequest returns the empty reservation buffer.
func NewReservationRequest() ReservationRequest {
	return ReservationRequest{PartySize: 1}
}

// ContactRequest is the payload of a contact message.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,oneof=Réservation Privatisation Événement Partenariat Autre"`
	Message string `json:"message" validate:"required"`
}

// NewsletterRequest is the payload for a newsletter subscription.
type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name,omitempty"`
}

// Envelope wraps every mutating endpoint response.
type Envelope struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
}

// HealthStatus is the payload of GET /api/health.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Kind is the flavour of a notification banner.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a timed banner message.
type Notification struct {
	Text      string
	Kind      Kind
	ExpiresAt time.Time
}

// Option is a selectable value with its display label.
type Option struct {
	Value string
	Label string
}

// TimeSlots are the bookable arrival times.
var TimeSlots = []string{
	"17:00", "17:30", "18:00", "18:30", "19:00", "19:30",
	"20:00", "20:30", "21:00", "21:30", "22:00",
}

// PartySizes are the selectable party sizes.
var PartySizes = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// ContactSubjects are the selectable contact subjects.
var ContactSubjects = []Option{
	{Value: "Réservation", Label: "Réservation"},
	{Value: "Privatisation", Label: "Privatisation"},
	{Value: "Événement", Label: "Proposer un événement"},
	{Value: "Partenariat", Label: "Partenariat"},
	{Value: "Autre", Label: "Autre"},
}
