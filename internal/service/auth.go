package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/lib/job"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/repository"
	"github.com/clerk/clerk-sdk-go/v2"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer is the iss claim of every token issued by /api/auth.
const TokenIssuer = "blockitin-ai"

// ErrInvalidToken covers malformed, expired and foreign tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are carried by bearer tokens. Subject is the user id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// ExternalUserLookup resolves an account held by an external identity
// provider.
type ExternalUserLookup func(ctx context.Context, id string) (*model.User, error)

// AuthService registers and signs in portal accounts.
type AuthService struct {
	users  *repository.UserStore
	secret []byte
	ttl    time.Duration
	queue  job.Enqueuer
	logger *zerolog.Logger
	now    func() time.Time

	clerkEnabled bool
	lookup       ExternalUserLookup
}

// NewAuthService builds the service. queue may be nil, in which case no
// welcome email is sent.
func NewAuthService(cfg *config.Config, users *repository.UserStore, queue job.Enqueuer, logger *zerolog.Logger) *AuthService {
	a := &AuthService{
		users:  users,
		secret: []byte(cfg.Auth.JWTSecret),
		ttl:    cfg.Auth.TokenTTL,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}

	if cfg.Auth.ClerkSecretKey != "" {
		clerk.SetKey(cfg.Auth.ClerkSecretKey)
		a.clerkEnabled = true
		a.lookup = clerkLookup
	}

	return a
}

// ClerkEnabled reports whether Clerk session tokens are accepted.
func (a *AuthService) ClerkEnabled() bool {
	return a.clerkEnabled
}

func (a *AuthService) Register(ctx context.Context, p *model.RegisterPayload) (*model.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := a.users.Create(model.User{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, errs.NewBadRequestError("User already exists with this email", true, nil, nil, nil)
	}
	if err != nil {
		return nil, err
	}

	token, err := a.IssueToken(user)
	if err != nil {
		return nil, err
	}

	a.sendWelcome(ctx, user)

	a.logger.Info().Str("user_id", user.ID).Msg("user registered")

	return &model.AuthResult{User: user, Token: token}, nil
}

func (a *AuthService) sendWelcome(ctx context.Context, user *model.User) {
	if a.queue == nil {
		return
	}

	task, err := job.NewWelcomeEmailTask(user.Email, user.Name)
	if err == nil {
		err = a.queue.Enqueue(ctx, task)
	}
	if err != nil {
		a.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to enqueue welcome email")
	}
}

func (a *AuthService) Login(ctx context.Context, p *model.LoginPayload) (*model.AuthResult, error) {
	invalid := errs.NewUnauthorizedError("Invalid email or password", true)

	user, err := a.users.GetByEmail(p.Email)
	if err != nil {
		return nil, invalid
	}
	if user.PasswordHash == "" {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(p.Password)); err != nil {
		return nil, invalid
	}

	token, err := a.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &model.AuthResult{User: user, Token: token}, nil
}

func (a *AuthService) Profile(ctx context.Context, userID string) (*model.ProfileResult, error) {
	user, err := a.users.GetByID(userID)
	if err != nil {
		return nil, errUserNotFound()
	}
	return &model.ProfileResult{User: user}, nil
}

// User returns the account with id, or repository.ErrNotFound.
func (a *AuthService) User(id string) (*model.User, error) {
	return a.users.GetByID(id)
}

// IssueToken signs an HS256 token for user.
func (a *AuthService) IssueToken(user *model.User) (string, error) {
	now := a.now()
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature, issuer and expiry.
func (a *AuthService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ProvisionExternal returns the local account for an identity verified by
// Clerk, creating it on first sight.
func (a *AuthService) ProvisionExternal(ctx context.Context, id string) (*model.User, error) {
	if user, err := a.users.GetByID(id); err == nil {
		return user, nil
	}
	if a.lookup == nil {
		return nil, repository.ErrNotFound
	}

	external, err := a.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	user, err := a.users.Create(*external)
	if errors.Is(err, repository.ErrDuplicate) {
		// a concurrent request may have provisioned the same id
		if user, err := a.users.GetByID(id); err == nil {
			return user, nil
		}
		a.logger.Warn().
			Str("clerk_user_id", id).
			Msg("Clerk email belongs to an existing local account")
		return nil, errs.NewConflictError("An account with this email already exists")
	}
	if err != nil {
		return nil, err
	}

	a.logger.Info().Str("user_id", user.ID).Msg("provisioned user from Clerk")
	return user, nil
}

func clerkLookup(ctx context.Context, id string) (*model.User, error) {
	u, err := clerkuser.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch clerk user: %w", err)
	}

	name := strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
	if name == "" {
		name = guestName
	}

	var email string
	for _, addr := range u.EmailAddresses {
		if addr == nil {
			continue
		}
		if email == "" || (u.PrimaryEmailAddressID != nil && addr.ID == *u.PrimaryEmailAddressID) {
			email = addr.EmailAddress
		}
	}
	if email == "" {
		email = u.ID + "@users.clerk"
	}

	return &model.User{ID: u.ID, Name: name, Email: email}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
