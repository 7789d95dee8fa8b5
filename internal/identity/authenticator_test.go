package identity

import (
	"context"
	"testing"

	"storyhive/internal/cache"
	"storyhive/internal/database"
	"storyhive/internal/models"
	"storyhive/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthenticator(t *testing.T) (*Authenticator, repository.ProfileRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	profiles := repository.NewProfileRepository(db)
	auth := NewAuthenticator(repository.NewAccountRepository(db), profiles, NewIssuer("test-secret"))
	return auth, profiles
}

func TestAuthenticator_RegisterProvisionsProfile(t *testing.T) {
	auth, profiles := setupAuthenticator(t)
	ctx := context.Background()

	session, err := auth.Register(ctx, SignUpParams{
		Email:    "ada@example.com",
		Password: "pw",
		Metadata: Metadata{FullName: "Ada Lovelace"},
	})
	require.NoError(t, err)

	profile, err := profiles.GetByID(ctx, session.Identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	// Fresh sign-ups are never admins.
	assert.False(t, profile.IsAdmin)
}

func TestAuthenticator_Resolve(t *testing.T) {
	auth, _ := setupAuthenticator(t)
	ctx := context.Background()

	session, err := auth.Register(ctx, SignUpParams{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	id, err := auth.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Identity.ID, id.ID)
	assert.Equal(t, "ada@example.com", id.Email)

	_, err = auth.Resolve(ctx, "garbage")
	assert.Equal(t, models.CodeAuth, models.CodeOf(err))
}

func TestAuthenticator_RevokedTokenRejected(t *testing.T) {
	auth, _ := setupAuthenticator(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	session, err := auth.Register(ctx, SignUpParams{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = auth.Resolve(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, auth.Revoke(ctx, session.Token))

	_, err = auth.Resolve(ctx, session.Token)
	assert.Equal(t, models.CodeAuth, models.CodeOf(err))
}

func TestAuthenticator_RevokeFailsOpenWithoutRedis(t *testing.T) {
	auth, _ := setupAuthenticator(t)
	ctx := context.Background()

	session, err := auth.Register(ctx, SignUpParams{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	// No denylist to write to; the token stays usable.
	require.NoError(t, auth.Revoke(ctx, session.Token))
	_, err = auth.Resolve(ctx, session.Token)
	assert.NoError(t, err)
}

func TestAuthenticator_PasswordsAreHashed(t *testing.T) {
	auth, _ := setupAuthenticator(t)
	ctx := context.Background()

	session, err := auth.Register(ctx, SignUpParams{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	account, err := auth.accounts.GetByID(ctx, session.Identity.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw", account.Password)
	assert.NotEmpty(t, account.Password)
}
