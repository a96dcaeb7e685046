// Package middleware implements the request guards. Because every user
// owns their own keypair, a guard cannot verify anything until it knows
// whose public key to use: it first peeks at the token's claims without
// trusting them, purely to select the key, and only the subsequent
// authoritative verification grants access.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/troindx/oxidize/internal/auth"
	"github.com/troindx/oxidize/internal/model"
	"github.com/troindx/oxidize/internal/repository"
)

// Session is the authenticated request context produced by a guard: the
// resolved user plus the raw token that proved it.
type Session struct {
	User  *model.User
	Token string
}

type sessionCtxKey struct{}

// SessionFromContext returns the Session injected by a guard.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return session, ok
}

// WithSession returns a context carrying the given session, exactly as a
// guard would inject it.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

// Guard builds the authentication middleware.
type Guard struct {
	users  repository.UserRepository
	authn  auth.Authenticator
	logger *zerolog.Logger
}

// NewGuard creates a Guard backed by the given user directory.
func NewGuard(users repository.UserRepository, authn auth.Authenticator, logger *zerolog.Logger) *Guard {
	return &Guard{users: users, authn: authn, logger: logger}
}

// RequireSession validates the bearer token and injects the Session. No
// authorization decision is made before the authoritative verification
// succeeds.
func (g *Guard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, status, msg := g.resolveSession(r)
		if session == nil {
			writeGuardError(w, status, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireOwnership is the stricter guard for mutation endpoints: on top of
// full session validation it requires the verified token subject to equal
// the {id} path parameter, so a valid token for one user cannot mutate
// another user's resource. Expiry is enforced here exactly as in
// RequireSession.
func (g *Guard) RequireOwnership(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, status, msg := g.resolveSession(r)
		if session == nil {
			writeGuardError(w, status, msg)
			return
		}

		targetID := chi.URLParam(r, "id")
		if targetID != session.User.ID.Hex() {
			writeGuardError(w, http.StatusBadRequest, "token subject does not match target resource")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// resolveSession runs the two-phase validation. On failure it returns a
// nil session plus the status and message to respond with.
func (g *Guard) resolveSession(r *http.Request) (*Session, int, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, http.StatusUnauthorized, "missing authorization header"
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return nil, http.StatusBadRequest, "invalid authorization header format"
	}
	token := strings.TrimPrefix(header, "Bearer ")

	// Phase one: unauthenticated peek, used for nothing but key
	// selection.
	subject, err := g.authn.PeekSubject(token)
	if err != nil {
		return nil, http.StatusBadRequest, "malformed token"
	}

	if _, err := bson.ObjectIDFromHex(subject); err != nil {
		return nil, http.StatusBadRequest, "invalid token subject"
	}

	user, err := g.users.GetUser(r.Context(), subject)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, http.StatusNotFound, "user not found"
		}
		g.logger.Error().Err(err).Msg("guard failed to load user")
		return nil, http.StatusInternalServerError, "something went wrong"
	}

	// Phase two: authoritative verification against the stored public
	// key, expiry included.
	if _, err := g.authn.VerifyToken(token, []byte(user.PublicKey)); err != nil {
		return nil, http.StatusUnauthorized, "invalid or expired token"
	}

	return &Session{User: user, Token: token}, 0, ""
}

func writeGuardError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
