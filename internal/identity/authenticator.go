package identity

import (
	"context"
	"log/slog"
	"time"

	"storyhive/internal/cache"
	"storyhive/internal/middleware"
	"storyhive/internal/models"
	"storyhive/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator performs the stateless credential work: registering
// accounts, verifying passwords, minting and resolving tokens. It holds no
// per-client state, so one instance serves every request.
type Authenticator struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	issuer   *Issuer
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(accounts repository.AccountRepository, profiles repository.ProfileRepository, issuer *Issuer) *Authenticator {
	return &Authenticator{accounts: accounts, profiles: profiles, issuer: issuer}
}

// Register creates an account with a hashed password, provisions its
// profile row and returns a fresh session. Profile provisioning is
// best-effort: a failure degrades the user to non-admin defaults instead
// of failing the sign-up.
func (a *Authenticator) Register(ctx context.Context, params SignUpParams) (*Session, error) {
	if params.Email == "" || params.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	account := &models.Account{
		Email:     params.Email,
		Password:  string(hashed),
		FullName:  params.Metadata.FullName,
		AvatarURL: params.Metadata.AvatarURL,
	}
	if err := a.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:        account.ID,
		Email:     account.Email,
		FullName:  account.FullName,
		AvatarURL: account.AvatarURL,
	}
	if err := a.profiles.Create(ctx, profile); err != nil {
		middleware.Logger.Warn("profile provisioning failed on sign-up",
			slog.Uint64("account_id", uint64(account.ID)),
			slog.String("error", err.Error()),
		)
	}

	return a.sessionFor(account)
}

// Authenticate verifies a password and returns a fresh session. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	account, err := a.accounts.GetByEmail(ctx, email)
	if err != nil {
		if models.CodeOf(err) == models.CodeNotFound {
			return nil, models.NewAuthError("Invalid credentials")
		}
		return nil, err
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewAuthError("Invalid credentials")
	}

	return a.sessionFor(account)
}

// Resolve validates a token and returns the identity behind it.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*Identity, error) {
	claims, err := a.issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	if cache.IsTokenRevoked(ctx, claims.JTI) {
		return nil, models.NewAuthError("Token has been revoked")
	}

	account, err := a.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if models.CodeOf(err) == models.CodeNotFound {
			return nil, models.NewAuthError("Account no longer exists")
		}
		return nil, err
	}

	return identityFor(account), nil
}

// Revoke denylists a token until its natural expiry. Invalid or already
// expired tokens are a no-op since there is nothing left to revoke.
func (a *Authenticator) Revoke(ctx context.Context, token string) error {
	claims, err := a.issuer.Parse(token)
	if err != nil {
		return nil
	}
	return cache.RevokeToken(ctx, claims.JTI, time.Until(claims.ExpiresAt))
}

func (a *Authenticator) sessionFor(account *models.Account) (*Session, error) {
	token, expiresAt, err := a.issuer.Generate(account.ID, account.Email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  identityFor(account),
	}, nil
}

func identityFor(account *models.Account) *Identity {
	return &Identity{
		ID:    account.ID,
		Email: account.Email,
		Metadata: Metadata{
			FullName:  account.FullName,
			AvatarURL: account.AvatarURL,
		},
	}
}

// tokenTTL is the remaining lifetime to persist a freshly minted session.
func tokenTTL(session *Session) time.Duration {
	return time.Until(session.ExpiresAt)
}
