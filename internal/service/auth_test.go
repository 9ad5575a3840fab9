package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/lib/job"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T, queue job.Enqueuer) (*AuthService, *repository.UserStore) {
	t.Helper()
	users := repository.NewUserStore()
	return NewAuthService(testConfig(), users, queue, &nop), users
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %v", err)
	return httpErr.Status
}

func TestRegisterAndLogin(t *testing.T) {
	queue := &fakeQueue{}
	auth, _ := newAuth(t, queue)
	ctx := context.Background()

	res, err := auth.Register(ctx, &model.RegisterPayload{Name: "Ada Lovelace", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.User.ID)
	assert.NotEmpty(t, res.Token)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, job.TaskWelcome, queue.tasks[0].Type())

	claims, err := auth.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, TokenIssuer, claims.Issuer)

	login, err := auth.Login(ctx, &model.LoginPayload{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _ := newAuth(t, nil)
	p := &model.RegisterPayload{Name: "Ada", Email: "ada@example.com", Password: "secret1"}

	_, err := auth.Register(context.Background(), p)
	require.NoError(t, err)

	_, err = auth.Register(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	assert.Equal(t, "User already exists with this email", err.Error())
}

func TestRegisterSurvivesQueueFailure(t *testing.T) {
	auth, _ := newAuth(t, &fakeQueue{err: errors.New("redis down")})

	res, err := auth.Register(context.Background(), &model.RegisterPayload{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLoginRejects(t *testing.T) {
	auth, users := newAuth(t, nil)
	ctx := context.Background()

	_, err := auth.Register(ctx, &model.RegisterPayload{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = users.Create(model.User{ID: "clerk_1", Name: "No Password", Email: "nopw@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "secret1"},
		{"wrong password", "ada@example.com", "wrong"},
		{"account without password", "nopw@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Login(ctx, &model.LoginPayload{Email: tt.email, Password: tt.password})
			require.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
			assert.Equal(t, "Invalid email or password", err.Error())
		})
	}
}

func TestProfile(t *testing.T) {
	auth, users := newAuth(t, nil)
	_, err := users.Create(model.User{ID: "u1", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	res, err := auth.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.User.Name)

	_, err = auth.Profile(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestParseTokenRejects(t *testing.T) {
	auth, _ := newAuth(t, nil)
	user := &model.User{ID: "u1", Email: "ada@example.com", Name: "Ada"}

	valid, err := auth.IssueToken(user)
	require.NoError(t, err)

	expired := func() string {
		past := *auth
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		tok, err := past.IssueToken(user)
		require.NoError(t, err)
		return tok
	}()

	otherSecret := func() string {
		other := *auth
		other.secret = []byte("another-secret")
		tok, err := other.IssueToken(user)
		require.NoError(t, err)
		return tok
	}()

	foreignIssuer := func() string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(auth.secret)
		require.NoError(t, err)
		return tok
	}()

	_, err = auth.ParseToken(valid)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"expired":        expired,
		"wrong secret":   otherSecret,
		"foreign issuer": foreignIssuer,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.ParseToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestProvisionExternal(t *testing.T) {
	auth, users := newAuth(t, nil)
	ctx := context.Background()

	_, err := auth.ProvisionExternal(ctx, "user_abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	lookups := 0
	auth.lookup = func(_ context.Context, id string) (*model.User, error) {
		lookups++
		return &model.User{ID: id, Name: "Grace Hopper", Email: "grace@example.com"}, nil
	}

	user, err := auth.ProvisionExternal(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", user.Name)

	stored, err := users.GetByID("user_abc")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", stored.Email)

	_, err = auth.ProvisionExternal(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, 1, lookups)
}

func TestProvisionExternalEmailConflict(t *testing.T) {
	auth, users := newAuth(t, nil)
	ctx := context.Background()

	_, err := users.Create(model.User{ID: "local-1", Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)

	auth.lookup = func(_ context.Context, id string) (*model.User, error) {
		return &model.User{ID: id, Name: "Grace Hopper", Email: "Grace@Example.com"}, nil
	}

	_, err = auth.ProvisionExternal(ctx, "user_abc")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))
	assert.Equal(t, "An account with this email already exists", err.Error())

	_, err = users.GetByID("user_abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProvisionExternalLookupError(t *testing.T) {
	auth, _ := newAuth(t, nil)
	auth.lookup = func(context.Context, string) (*model.User, error) {
		return nil, errors.New("clerk unavailable")
	}

	_, err := auth.ProvisionExternal(context.Background(), "user_abc")
	assert.Error(t, err)
}
