package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/lenvers-aubagne/lenvers-web/internal/model"
	"github.com/lenvers-aubagne/lenvers-web/internal/repository"
	"github.com/lenvers-aubagne/lenvers-web/internal/session"
)

// FlowState is a step of a form submission.
type FlowState string

const (
	StateIdle       FlowState = "idle"
	StateSubmitting FlowState = "submitting"
	StateSucceeded  FlowState = "succeeded"
	StateFailed     FlowState = "failed"
)

// Outcome labels how a submission ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRejected  Outcome = "rejected"
	OutcomeTransport Outcome = "transport_error"
)

// Messages are the banner texts of one flow.
type Messages struct {
	Success   string
	Rejected  string
	Transport string
}

// Result is what a finished flow reports back.
type Result struct {
	State    FlowState
	Outcome  Outcome
	Envelope model.Envelope
	Err      error
}

// Submitter posts a payload and decodes the response envelope.
type Submitter interface {
	Submit(ctx context.Context, path string, body any) (model.Envelope, error)
}

// Flow is the buffer → submit → interpret envelope → reset-or-notify
// sequence shared by every form, parameterised by endpoint and behaviour.
type Flow[T any] struct {
	Name     string
	Path     string
	Messages Messages
	// Gate toggles the visit's loading flag around the request.
	Gate bool
	// Reset clears the visit's buffer after a success.
	Reset func(v *session.Visit)

	submitter Submitter
	metrics   *Metrics
	log       zerolog.Logger
}

// Start submits payload once, walking Idle → Submitting → Succeeded|Failed
// → Idle. The visit is in the Submitting state before Start returns, so the
// next render already shows the request as pending; the rest of the flow
// completes in the background. The request is detached from ctx's cancellation: once
// sent, a submission runs to completion. The result is delivered on the
// returned channel.
func (f *Flow[T]) Start(ctx context.Context, v *session.Visit, payload T) <-chan Result {
	f.enter(v)

	done := make(chan Result, 1)
	ctx = context.WithoutCancel(ctx)
	go func() {
		done <- f.complete(ctx, v, payload)
	}()
	return done
}

func (f *Flow[T]) enter(v *session.Visit) {
	v.Begin()
	if f.Gate {
		v.SetLoading(true)
	}
	f.log.Debug().Str("flow", f.Name).Str("visit", v.ID.String()).Str("state", string(StateSubmitting)).Msg("flow transition")
}

// complete sends the request and applies the outcome. The loading flag is
// cleared on every exit path, before the visit stops counting as in flight.
func (f *Flow[T]) complete(ctx context.Context, v *session.Visit, payload T) Result {
	log := f.log.With().Str("flow", f.Name).Str("visit", v.ID.String()).Logger()

	defer v.End()
	if f.Gate {
		defer v.SetLoading(false)
	}

	env, err := f.submitter.Submit(ctx, f.Path, payload)

	res := Result{Envelope: env, Err: err}
	switch {
	case err == nil:
		res.State, res.Outcome = StateSucceeded, OutcomeSuccess
		v.Notify(f.Messages.Success, model.KindSuccess)
		if f.Reset != nil {
			f.Reset(v)
		}
		log.Debug().Str("message", env.Message).Str("reservation_id", env.ReservationID).Msg("backend accepted submission")
	case errors.Is(err, repository.ErrRejected):
		res.State, res.Outcome = StateFailed, OutcomeRejected
		v.Notify(f.Messages.Rejected, model.KindError)
		log.Warn().Err(err).Str("message", env.Message).Msg("backend rejected submission")
	default:
		res.State, res.Outcome = StateFailed, OutcomeTransport
		v.Notify(f.Messages.Transport, model.KindError)
		log.Warn().Err(err).Msg("submission did not reach the backend")
	}

	f.metrics.observeSubmission(f.Name, res.Outcome)
	log.Debug().Str("state", string(res.State)).Msg("flow transition")
	log.Debug().Str("state", string(StateIdle)).Msg("flow transition")
	return res
}
