package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/config"
	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
	"github.com/casedesk/casedesk-backend/pkg/outbox"
)

func setupIdentityTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL,
  group_id TEXT,
  email_verified_at DATETIME,
  verification_code TEXT,
  otp_code TEXT,
  otp_expires_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	outboxEvents := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, conn.Exec(users).Error)
	require.NoError(t, conn.Exec(outboxEvents).Error)
	return conn
}

func newIdentityService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	client := db.NewWithConn(conn)
	svc, err := NewService(ServiceParams{
		DB:     client,
		Outbox: outbox.NewService(outbox.NewRepository(conn), nil),
		JWTConfig: config.JWTConfig{
			Secret:            "identity-test-secret",
			Issuer:            "casedesk-test",
			ExpirationMinutes: 30,
		},
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     8,
			ArgonKeyLen:      16,
		},
		OTPConfig: config.OTPConfig{Length: 6, TTL: 15 * time.Minute},
	})
	require.NoError(t, err)
	return svc
}

func TestRegister_CreatesUserAndOutboxEvent(t *testing.T) {
	conn := setupIdentityTestDB(t)
	svc := newIdentityService(t, conn)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Username: "ana",
		Email:    "Ana@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotNil(t, user.VerificationCode)
	assert.Len(t, *user.VerificationCode, 6)
	assert.Nil(t, user.EmailVerifiedAt)

	var events []models.OutboxEvent
	require.NoError(t, conn.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "user_registered", string(events[0].EventType))
	assert.Equal(t, user.ID, events[0].AggregateID)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	conn := setupIdentityTestDB(t)
	svc := newIdentityService(t, conn)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "a", Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "b", Email: "dup@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestRegister_AdminGetsOwnGroup(t *testing.T) {
	conn := setupIdentityTestDB(t)
	svc := newIdentityService(t, conn)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Username: "boss",
		Email:    "boss@example.com",
		Password: "password123",
		Role:     "admin",
	})
	require.NoError(t, err)
	require.NotNil(t, user.GroupID)
	assert.Equal(t, user.ID, *user.GroupID)
}

func TestLogin_Flows(t *testing.T) {
	conn := setupIdentityTestDB(t)
	svc := newIdentityService(t, conn)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "lee", Email: "lee@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.Login(ctx, LoginRequest{Email: "lee@example.com", Password: "wrongpass"})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Login(ctx, LoginRequest{Email: "lee@example.com", Password: "password123"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, details["needsVerification"])

	require.NoError(t, svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "lee@example.com", Token: *user.VerificationCode}))

	result, err := svc.Login(ctx, LoginRequest{Email: "lee@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)
}

func TestVerifyEmail_InvalidToken(t *testing.T) {
	conn := setupIdentityTestDB(t)
	svc := newIdentityService(t, conn)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "kim", Email: "kim@example.com", Password: "password123"})
	require.NoError(t, err)

	err = svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "kim@example.com", Token: "000000x"})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestPasswordReset_OTPSingleUse(t *testing.T) {
	conn := setupIdentityTestDB(t)
	svc := newIdentityService(t, conn)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "mo", Email: "mo@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "mo@example.com", Token: *user.VerificationCode}))

	require.NoError(t, svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "mo@example.com"}))

	var stored models.User
	require.NoError(t, conn.Where("email = ?", "mo@example.com").First(&stored).Error)
	require.NotNil(t, stored.OTPCode)
	code := *stored.OTPCode

	require.NoError(t, svc.ResetPassword(ctx, ResetPasswordRequest{
		Email:       "mo@example.com",
		OTP:         code,
		NewPassword: "newpassword1",
	}))

	// old password no longer works, new one does
	_, err = svc.Login(ctx, LoginRequest{Email: "mo@example.com", Password: "password123"})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
	_, err = svc.Login(ctx, LoginRequest{Email: "mo@example.com", Password: "newpassword1"})
	require.NoError(t, err)

	// otp was cleared on success
	err = svc.ResetPassword(ctx, ResetPasswordRequest{
		Email:       "mo@example.com",
		OTP:         code,
		NewPassword: "anotherpass1",
	})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	conn := setupIdentityTestDB(t)
	svc := newIdentityService(t, conn)

	err := svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestResendVerification(t *testing.T) {
	conn := setupIdentityTestDB(t)
	svc := newIdentityService(t, conn)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "pat", Email: "pat@example.com", Password: "password123"})
	require.NoError(t, err)
	first := *user.VerificationCode

	require.NoError(t, svc.ResendVerification(ctx, ResendVerificationRequest{Email: "pat@example.com"}))

	var stored models.User
	require.NoError(t, conn.Where("email = ?", "pat@example.com").First(&stored).Error)
	require.NotNil(t, stored.VerificationCode)
	assert.Len(t, *stored.VerificationCode, 6)
	_ = first

	require.NoError(t, svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "pat@example.com", Token: *stored.VerificationCode}))

	err = svc.ResendVerification(ctx, ResendVerificationRequest{Email: "pat@example.com"})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}
