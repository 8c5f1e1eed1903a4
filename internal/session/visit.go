// Package session holds the per-visitor application state: the current
// section, the notification banner, the loading flag, the three form buffers
// and the events catalog.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lenvers-aubagne/lenvers-web/internal/model"
)

// Visit is the state of one browser visit. All methods are safe for
// concurrent use: flows complete on their own goroutines.
type Visit struct {
	ID uuid.UUID

	mu              sync.Mutex
	ttl             time.Duration
	now             func() time.Time
	lastSeen        time.Time
	section         model.Section
	notification    *model.Notification
	dismiss         *time.Timer
	loading         bool
	inFlight        int
	reservation     model.ReservationRequest
	contact         model.ContactRequest
	newsletterEmail string
	events          []model.Event
	catalog         catalogState
	catalogDone     chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

type catalogState int

const (
	catalogIdle catalogState = iota
	catalogLoading
	catalogSettled
)

func newVisit(ttl time.Duration, now func() time.Time) *Visit {
	ctx, cancel := context.WithCancel(context.Background())
	return &Visit{
		ctx:         ctx,
		cancel:      cancel,
		ID:          uuid.New(),
		ttl:         ttl,
		now:         now,
		lastSeen:    now(),
		section:     model.SectionHome,
		reservation: model.NewReservationRequest(),
		catalogDone: make(chan struct{}),
	}
}

// Navigate makes section current. There are no guards: any value is
// accepted and unknown ones land on home.
func (v *Visit) Navigate(section model.Section) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.section = model.ParseSection(string(section))
}

// Section returns the current section.
func (v *Visit) Section() model.Section {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.section
}

// Notify replaces the visible notification and restarts the auto-dismiss
// timer. A superseded timer is stopped, and even one that already fired
// only clears the notification it was started for.
func (v *Visit) Notify(text string, kind model.Kind) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.dismiss != nil {
		v.dismiss.Stop()
	}

	n := &model.Notification{Text: text, Kind: kind, ExpiresAt: v.now().Add(v.ttl)}
	v.notification = n
	v.dismiss = time.AfterFunc(v.ttl, func() { v.clear(n) })
}

func (v *Visit) clear(n *model.Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.notification == n {
		v.notification = nil
		v.dismiss = nil
	}
}

// Notification returns the visible notification, if any.
func (v *Visit) Notification() (model.Notification, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.notification == nil {
		return model.Notification{}, false
	}
	return *v.notification, true
}

// SetLoading sets the shared loading flag of the reservation and contact flows.
func (v *Visit) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = loading
}

// Loading reports whether a reservation or contact request is outstanding.
func (v *Visit) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Begin records a form submission leaving for the backend; End records its
// return. The count drives page refreshes and keeps busy visits from being
// evicted. The catalog load is not counted.
func (v *Visit) Begin() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inFlight++
}

// End balances a previous Begin.
func (v *Visit) End() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.inFlight > 0 {
		v.inFlight--
	}
}

// Reservation returns the reservation buffer.
func (v *Visit) Reservation() model.ReservationRequest {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reservation
}

// SetReservation overwrites the reservation buffer.
func (v *Visit) SetReservation(req model.ReservationRequest) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reservation = req
}

// Contact returns the contact buffer.
func (v *Visit) Contact() model.ContactRequest {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.contact
}

// SetContact overwrites the contact buffer.
func (v *Visit) SetContact(req model.ContactRequest) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.contact = req
}

// NewsletterEmail returns the newsletter buffer.
func (v *Visit) NewsletterEmail() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.newsletterEmail
}

// SetNewsletterEmail overwrites the newsletter buffer.
func (v *Visit) SetNewsletterEmail(email string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.newsletterEmail = email
}

// ClaimCatalog reports whether the caller is the first to ask for the
// catalog; only that caller loads it.
func (v *Visit) ClaimCatalog() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.catalog != catalogIdle {
		return false
	}
	v.catalog = catalogLoading
	return true
}

// SettleCatalog records that the catalog load returned, with or without events.
func (v *Visit) SettleCatalog() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.catalog != catalogSettled {
		v.catalog = catalogSettled
		close(v.catalogDone)
	}
}

// CatalogDone is closed once the catalog load has returned.
func (v *Visit) CatalogDone() <-chan struct{} {
	return v.catalogDone
}

// CatalogSettled reports whether the catalog load has returned.
func (v *Visit) CatalogSettled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.catalog == catalogSettled
}

// Context is cancelled when the visit is closed. Work that only matters to
// this visit, like its catalog load, runs under it.
func (v *Visit) Context() context.Context {
	return v.ctx
}

// SetEvents stores the catalog.
func (v *Visit) SetEvents(events []model.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append([]model.Event(nil), events...)
}

// Events returns a copy of the catalog.
func (v *Visit) Events() []model.Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Event(nil), v.events...)
}

// Snapshot is a consistent copy of a visit taken for rendering.
type Snapshot struct {
	Section         model.Section
	Notification    *model.Notification
	Loading         bool
	// InFlight is true while a form submission awaits the backend.
	InFlight        bool
	Reservation     model.ReservationRequest
	Contact         model.ContactRequest
	NewsletterEmail string
	Events          []model.Event
}

// Snapshot copies the whole state under a single lock.
func (v *Visit) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		Section:         v.section,
		Loading:         v.loading,
		InFlight:        v.inFlight > 0,
		Reservation:     v.reservation,
		Contact:         v.contact,
		NewsletterEmail: v.newsletterEmail,
		Events:          append([]model.Event(nil), v.events...),
	}
	if v.notification != nil {
		n := *v.notification
		s.Notification = &n
	}
	return s
}

// Close stops the pending dismissal, if any, and cancels the visit's context.
func (v *Visit) Close() {
	v.cancel()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dismiss != nil {
		v.dismiss.Stop()
		v.dismiss = nil
	}
}

func (v *Visit) touch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastSeen = v.now()
}

func (v *Visit) idleSince(now time.Time) (time.Duration, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return now.Sub(v.lastSeen), v.inFlight > 0
}
