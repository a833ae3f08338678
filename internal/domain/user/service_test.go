package user

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/freshloaf/storefront-backend/internal/config"
	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
)

// recordingMailer captures the tokens that would have been emailed
type recordingMailer struct {
	verifyTokens []string
	resetTokens  []string
}

func (m *recordingMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	m.verifyTokens = append(m.verifyTokens, token)
	return nil
}

func (m *recordingMailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	m.resetTokens = append(m.resetTokens, token)
	return nil
}

func newUserFixture(t *testing.T) (*Service, *recordingMailer, *miniredis.Miniredis) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{}
	cfg.App.Name = "test"
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 2 * time.Hour
	cfg.Security.BcryptCost = 4

	mailer := &recordingMailer{}
	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewService(db, redisClient, cfg, mailer, log), mailer, mr
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Email:       "Jamie@Example.com",
		Password:    "sourdough123",
		DisplayName: "Jamie Cruz",
		Phone:       "555-0101",
	}
}

func TestRegisterCreatesUnverifiedAccount(t *testing.T) {
	s, mailer, _ := newUserFixture(t)
	ctx := context.Background()

	response, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)

	assert.Equal(t, "jamie@example.com", response.User.Email, "email is lowercased")
	assert.False(t, response.User.EmailVerified)
	assert.Empty(t, response.User.Password)
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)
	assert.Contains(t, response.Advisory, "verify")

	require.Len(t, mailer.verifyTokens, 1)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = s.Register(ctx, registerRequest())
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	s, _, _ := newUserFixture(t)

	req := registerRequest()
	req.Password = "short"

	_, err := s.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	s, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)

	response, err := s.Login(ctx, &LoginRequest{Email: "jamie@example.com", Password: "sourdough123"})
	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
	assert.Contains(t, response.Advisory, "verify", "unverified login carries the advisory")
	assert.NotNil(t, response.User.LastLoginAt)
}

func TestLoginWrongPassword(t *testing.T) {
	s, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = s.Login(ctx, &LoginRequest{Email: "jamie@example.com", Password: "wrong12345"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestLoginUnknownEmail(t *testing.T) {
	s, _, _ := newUserFixture(t)

	_, err := s.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "whatever123"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestVerifyEmailFlow(t *testing.T) {
	s, mailer, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.Len(t, mailer.verifyTokens, 1)

	verified, err := s.VerifyEmail(ctx, mailer.verifyTokens[0])
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)
	assert.NotNil(t, verified.EmailVerifiedAt)

	// The token is single-use.
	_, err = s.VerifyEmail(ctx, mailer.verifyTokens[0])
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	// A verified login drops the advisory.
	response, err := s.Login(ctx, &LoginRequest{Email: "jamie@example.com", Password: "sourdough123"})
	require.NoError(t, err)
	assert.Empty(t, response.Advisory)
}

func TestVerifyEmailBadToken(t *testing.T) {
	s, _, _ := newUserFixture(t)

	_, err := s.VerifyEmail(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestResendVerification(t *testing.T) {
	s, mailer, _ := newUserFixture(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)

	require.NoError(t, s.ResendVerification(ctx, registered.User.ID))
	assert.Len(t, mailer.verifyTokens, 2)

	// Once verified, resending is a conflict.
	_, err = s.VerifyEmail(ctx, mailer.verifyTokens[1])
	require.NoError(t, err)
	err = s.ResendVerification(ctx, registered.User.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestPasswordResetFlow(t *testing.T) {
	s, mailer, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)

	require.NoError(t, s.RequestPasswordReset(ctx, "jamie@example.com"))
	require.Len(t, mailer.resetTokens, 1)

	require.NoError(t, s.ResetPassword(ctx, mailer.resetTokens[0], "newcrumb456"))

	// Old password no longer works, new one does.
	_, err = s.Login(ctx, &LoginRequest{Email: "jamie@example.com", Password: "sourdough123"})
	assert.Error(t, err)
	_, err = s.Login(ctx, &LoginRequest{Email: "jamie@example.com", Password: "newcrumb456"})
	assert.NoError(t, err)

	// The token is single-use.
	err = s.ResetPassword(ctx, mailer.resetTokens[0], "another789pass")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	s, mailer, _ := newUserFixture(t)

	require.NoError(t, s.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mailer.resetTokens)
}

func TestRefreshTokenPicksUpVerification(t *testing.T) {
	s, mailer, _ := newUserFixture(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = s.VerifyEmail(ctx, mailer.verifyTokens[0])
	require.NoError(t, err)

	refreshed, err := s.RefreshToken(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.True(t, refreshed.User.EmailVerified)
}

func TestIsAdmin(t *testing.T) {
	s, _, _ := newUserFixture(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)

	isAdmin, err := s.IsAdmin(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	// Unknown users are simply not admins.
	isAdmin, err = s.IsAdmin(ctx, 999)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestUpdateProfile(t *testing.T) {
	s, _, _ := newUserFixture(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, registerRequest())
	require.NoError(t, err)

	updated, err := s.UpdateProfile(ctx, registered.User.ID, "J. Cruz", "")
	require.NoError(t, err)
	assert.Equal(t, "J. Cruz", updated.DisplayName)
	assert.Equal(t, "555-0101", updated.Phone, "blank fields are left alone")
}
