package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/chiasentiment/Samsonsblog/internal/services"
	"github.com/chiasentiment/Samsonsblog/internal/session"
	"github.com/chiasentiment/Samsonsblog/internal/store"
	"github.com/chiasentiment/Samsonsblog/types"
)

type contextKey string

const contextActorKey contextKey = "actor"

// CurrentActor returns the authenticated user bound to the request, or
// nil for an anonymous request.
func CurrentActor(ctx context.Context) *types.User {
	actor, _ := ctx.Value(contextActorKey).(*types.User)
	return actor
}

// WithActor resolves the session cookie into the current actor. The
// user record is loaded from the store on every request, so a stale or
// deleted account simply falls back to anonymous, and admin privilege
// is always derived from fresh identity. The cookie is only cleared
// when the account is confirmed gone; a transient store failure leaves
// the session intact and the request anonymous.
func WithActor(sessions *session.Manager, users *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessions.ActorID(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					sessions.Clear(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), contextActorKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
