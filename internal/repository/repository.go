// Package repository implements data access against the L'envers REST API.
// It speaks plain JSON over net/http through the backend client.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lenvers-aubagne/lenvers-web/internal/backend"
	"github.com/lenvers-aubagne/lenvers-web/internal/model"
)

// Backend endpoints.
const (
	PathEvents       = "/api/events"
	PathReservations = "/api/reservations"
	PathNewsletter   = "/api/newsletter/subscribe"
	PathContact      = "/api/contact"
)

// ErrTransport is returned when a request never completed or its body could
// not be read as JSON.
var ErrTransport = errors.New("backend unreachable")

// ErrRejected is returned when the backend answered without success: true.
var ErrRejected = errors.New("backend rejected the request")

// EventRepository reads the published events catalog.
type EventRepository struct {
	client *backend.Client
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(client *backend.Client) *EventRepository {
	return &EventRepository{client: client}
}

// List returns the events in the order the backend sent them.
// A response without an events field yields an empty slice.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.client.URL(PathEvents), nil)
	if err != nil {
		return nil, fmt.Errorf("build events request: %w", err)
	}

	resp, err := r.client.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list events: %w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	var payload model.EventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode events: %w: %w", ErrTransport, err)
	}

	if payload.Events == nil {
		return []model.Event{}, nil
	}
	return payload.Events, nil
}

// SubmissionRepository posts form payloads to the mutating endpoints.
type SubmissionRepository struct {
	client *backend.Client
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(client *backend.Client) *SubmissionRepository {
	return &SubmissionRepository{client: client}
}

// Submit POSTs body as JSON to path and decodes the response envelope.
//
// The HTTP status is not consulted: a decoded envelope without success: true
// is a soft failure (ErrRejected, envelope returned), anything that prevents
// decoding is a transport failure (ErrTransport).
func (r *SubmissionRepository) Submit(ctx context.Context, path string, body any) (model.Envelope, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("encode %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.client.URL(path), bytes.NewReader(data))
	if err != nil {
		return model.Envelope{}, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.HTTP.Do(req)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("post %s: %w: %w", path, ErrTransport, err)
	}
	defer resp.Body.Close()

	var env model.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return model.Envelope{}, fmt.Errorf("decode %s response: %w: %w", path, ErrTransport, err)
	}

	if !env.Success {
		return env, fmt.Errorf("post %s (status %d): %w", path, resp.StatusCode, ErrRejected)
	}
	return env, nil
}
