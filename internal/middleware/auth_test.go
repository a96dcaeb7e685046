package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/troindx/oxidize/internal/auth"
	"github.com/troindx/oxidize/internal/model"
	"github.com/troindx/oxidize/internal/repository"
)

type fakeUserDirectory struct {
	users map[string]*model.User
}

var _ repository.UserRepository = (*fakeUserDirectory)(nil)

func (d *fakeUserDirectory) GetUser(_ context.Context, id string) (*model.User, error) {
	user, ok := d.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (d *fakeUserDirectory) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, errors.New("not implemented")
}

func (d *fakeUserDirectory) CreateUser(context.Context, *model.User) (*model.User, error) {
	return nil, errors.New("not implemented")
}

func (d *fakeUserDirectory) UpdateUser(context.Context, string, repository.UpdateUserParams) (*model.User, error) {
	return nil, errors.New("not implemented")
}

func (d *fakeUserDirectory) DeleteUser(context.Context, string) (*model.User, error) {
	return nil, errors.New("not implemented")
}

type keyPair struct {
	publicPEM  string
	privatePEM []byte
}

var (
	keyPairsOnce sync.Once
	ownerKeys    keyPair
	strangerKeys keyPair
)

// Key generation is slow enough to share one set across the package.
func testKeyPairs(t *testing.T) (keyPair, keyPair) {
	t.Helper()

	keyPairsOnce.Do(func() {
		pub, priv, err := auth.GenerateKeyPair()
		if err != nil {
			t.Fatalf("GenerateKeyPair: %v", err)
		}
		ownerKeys = keyPair{publicPEM: pub, privatePEM: append([]byte(nil), priv.Bytes()...)}
		priv.Wipe()

		pub, priv, err = auth.GenerateKeyPair()
		if err != nil {
			t.Fatalf("GenerateKeyPair: %v", err)
		}
		strangerKeys = keyPair{publicPEM: pub, privatePEM: append([]byte(nil), priv.Bytes()...)}
		priv.Wipe()
	})

	return ownerKeys, strangerKeys
}

type guardFixture struct {
	owner    *model.User
	authn    auth.Authenticator
	router   chi.Router
	sessions []*Session
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()

	owner, _ := testKeyPairs(t)

	user := &model.User{
		ID:        bson.NewObjectID(),
		Email:     "owner@example.com",
		PublicKey: owner.publicPEM,
	}

	dir := &fakeUserDirectory{users: map[string]*model.User{user.ID.Hex(): user}}
	authn := auth.NewAuthenticator("oxidize")
	logger := zerolog.Nop()
	guard := NewGuard(dir, authn, &logger)

	f := &guardFixture{owner: user, authn: authn}

	record := func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		f.sessions = append(f.sessions, session)
		w.WriteHeader(http.StatusOK)
	}

	r := chi.NewRouter()
	r.With(guard.RequireSession).Get("/users/{id}", record)
	r.With(guard.RequireOwnership).Put("/users/{id}", record)
	f.router = r

	return f
}

func (f *guardFixture) do(t *testing.T, method, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRequireSession_Success(t *testing.T) {
	f := newGuardFixture(t)
	owner, _ := testKeyPairs(t)

	token, err := f.authn.IssueToken(f.owner.ID.Hex(), owner.privatePEM, time.Hour)
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/users/"+f.owner.ID.Hex(), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, f.sessions, 1)
	assert.Equal(t, f.owner.ID, f.sessions[0].User.ID)
	assert.Equal(t, token, f.sessions[0].Token)
}

func TestRequireSession_MissingHeader(t *testing.T) {
	f := newGuardFixture(t)

	w := f.do(t, http.MethodGet, "/users/"+f.owner.ID.Hex(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSession_NoBearerPrefix(t *testing.T) {
	f := newGuardFixture(t)

	w := f.do(t, http.MethodGet, "/users/"+f.owner.ID.Hex(), "Token abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireSession_MalformedToken(t *testing.T) {
	f := newGuardFixture(t)

	w := f.do(t, http.MethodGet, "/users/"+f.owner.ID.Hex(), "Bearer not.a.jwt")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireSession_InvalidSubject(t *testing.T) {
	f := newGuardFixture(t)
	owner, _ := testKeyPairs(t)

	token, err := f.authn.IssueToken("not-an-object-id", owner.privatePEM, time.Hour)
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/users/"+f.owner.ID.Hex(), "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireSession_UnknownUser(t *testing.T) {
	f := newGuardFixture(t)
	owner, _ := testKeyPairs(t)

	token, err := f.authn.IssueToken(bson.NewObjectID().Hex(), owner.privatePEM, time.Hour)
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/users/"+f.owner.ID.Hex(), "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequireSession_WrongKey(t *testing.T) {
	f := newGuardFixture(t)
	_, stranger := testKeyPairs(t)

	// Correctly formed token for the owner, signed with someone else's
	// private key.
	token, err := f.authn.IssueToken(f.owner.ID.Hex(), stranger.privatePEM, time.Hour)
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/users/"+f.owner.ID.Hex(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSession_Expired(t *testing.T) {
	f := newGuardFixture(t)
	owner, _ := testKeyPairs(t)

	token, err := f.authn.IssueToken(f.owner.ID.Hex(), owner.privatePEM, -time.Minute)
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/users/"+f.owner.ID.Hex(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireOwnership_Success(t *testing.T) {
	f := newGuardFixture(t)
	owner, _ := testKeyPairs(t)

	token, err := f.authn.IssueToken(f.owner.ID.Hex(), owner.privatePEM, time.Hour)
	require.NoError(t, err)

	w := f.do(t, http.MethodPut, "/users/"+f.owner.ID.Hex(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireOwnership_SubjectMismatch(t *testing.T) {
	f := newGuardFixture(t)
	owner, _ := testKeyPairs(t)

	// Valid, correctly signed token for the owner used against another
	// user's resource.
	token, err := f.authn.IssueToken(f.owner.ID.Hex(), owner.privatePEM, time.Hour)
	require.NoError(t, err)

	w := f.do(t, http.MethodPut, "/users/"+bson.NewObjectID().Hex(), "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireOwnership_Expired(t *testing.T) {
	f := newGuardFixture(t)
	owner, _ := testKeyPairs(t)

	// The ownership guard must enforce expiry exactly like the session
	// guard.
	token, err := f.authn.IssueToken(f.owner.ID.Hex(), owner.privatePEM, -time.Minute)
	require.NoError(t, err)

	w := f.do(t, http.MethodPut, "/users/"+f.owner.ID.Hex(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireOwnership_MissingHeader(t *testing.T) {
	f := newGuardFixture(t)

	w := f.do(t, http.MethodPut, "/users/"+f.owner.ID.Hex(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
