// Package server hosts a workflow behind net/http.
package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	workflow "github.com/simon020286/go-workflow"
	"github.com/simon020286/go-workflow/models"
)

// Handler runs the workflow for every request, then terminal
func Handler(exec *workflow.Executor, reg *workflow.Registry, terminal workflow.Terminal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := NewResponseContext(w, r)
		if err := exec.Run(r.Context(), reg, rc, terminal); err != nil {
			handleError(r.Context(), w, rc, err)
		}
	})
}

// Middleware runs the workflow in front of next.
// next is the terminal handler and only runs when every step succeeded.
func Middleware(exec *workflow.Executor, reg *workflow.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := NewResponseContext(w, r)
			terminal := func(ctx context.Context, _ models.RequestContext) error {
				next.ServeHTTP(w, r.WithContext(ctx))
				return nil
			}
			if err := exec.Run(r.Context(), reg, rc, terminal); err != nil {
				handleError(r.Context(), w, rc, err)
			}
		})
	}
}

// handleError reports a failed run. The status can only be changed while
// nothing has been written; partial output is left as is.
func handleError(ctx context.Context, w http.ResponseWriter, rc *ResponseContext, err error) {
	zerolog.Ctx(ctx).Debug().Err(err).Str("request_id", rc.RequestID()).Bool("partial", rc.Written()).Msg("request failed")
	if rc.Written() {
		return
	}
	http.Error(w, "workflow failed", http.StatusInternalServerError)
}
