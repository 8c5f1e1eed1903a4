package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lenvers-aubagne/lenvers-web/internal/service"
	"github.com/lenvers-aubagne/lenvers-web/internal/session"
)

// VisitCookie names the cookie carrying the visit id.
const VisitCookie = "lenvers_visit"

type visitKey struct{}

// VisitFrom returns the visit attached by the Visits middleware.
func VisitFrom(ctx context.Context) *session.Visit {
	v, _ := ctx.Value(visitKey{}).(*session.Visit)
	return v
}

// Visits attaches the caller's visit to the request context. A missing,
// malformed or evicted cookie starts a new visit. The events catalog only
// starts loading once the browser sends the cookie back, so clients that
// drop cookies never reach the backend.
func Visits(store *session.Store, svc *service.SiteService, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, err := lookupVisit(store, r)
			if err != nil {
				v = store.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitCookie,
					Value:    v.ID.String(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				log.Debug().Err(err).Str("visit", v.ID.String()).Msg("visit started")
			} else {
				svc.StartCatalog(v)
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), visitKey{}, v)))
		})
	}
}

var errNoCookie = errors.New("no visit cookie")

func lookupVisit(store *session.Store, r *http.Request) (*session.Visit, error) {
	c, err := r.Cookie(VisitCookie)
	if err != nil {
		return nil, errNoCookie
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return nil, err
	}
	return store.Get(id)
}

// Logger writes one structured access log line per request.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				ev := log.Info()
				if ww.Status() >= http.StatusInternalServerError {
					ev = log.Error()
				}
				ev.
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
