package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/auth"
	"github.com/casedesk/casedesk-backend/pkg/config"
	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
	"github.com/casedesk/casedesk-backend/pkg/logger"
	"github.com/casedesk/casedesk-backend/pkg/otp"
	"github.com/casedesk/casedesk-backend/pkg/outbox"
	"github.com/casedesk/casedesk-backend/pkg/outbox/payloads"
	"github.com/casedesk/casedesk-backend/pkg/security"
)

// RegisterRequest contains the payload required to onboard a new user.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=2,max=64"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role,omitempty" validate:"omitempty,oneof=admin staff customer"`
}

// LoginRequest carries the credential pair.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest starts the OTP reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the OTP reset flow.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// VerifyEmailRequest confirms ownership of an email address.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// ResendVerificationRequest regenerates the verification code.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service defines the identity and verification operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	VerifyEmail(ctx context.Context, req VerifyEmailRequest) error
	ResendVerification(ctx context.Context, req ResendVerificationRequest) error
}

// ServiceParams packages the dependencies for the identity service.
type ServiceParams struct {
	DB             *db.Client
	Outbox         *outbox.Service
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	OTPConfig      config.OTPConfig
	Logger         *logger.Logger
}

type service struct {
	db          *db.Client
	outbox      *outbox.Service
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	otpCfg      config.OTPConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires identity dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	return &service{
		db:          params.DB,
		outbox:      params.Outbox,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		otpCfg:      params.OTPConfig,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	role := enums.RoleCustomer
	if req.Role != "" {
		parsed, err := enums.ParseUserRole(req.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		role = parsed
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	code, err := otp.GenerateCode(s.otpCfg.Length)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}

	user := &models.User{
		ID:               uuid.New(),
		Username:         strings.TrimSpace(req.Username),
		Email:            email,
		PasswordHash:     passwordHash,
		Phone:            req.Phone,
		Role:             role,
		VerificationCode: &code,
	}
	// Admin accounts form their own group.
	if role == enums.RoleAdmin {
		groupID := user.ID
		user.GroupID = &groupID
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		if err := repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "idx_users_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Data: payloads.UserEvent{
				UserID:           user.ID,
				Username:         user.Username,
				Email:            user.Email,
				VerificationCode: code,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	repo := NewRepository(s.db.DB())

	user, err := repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if !user.IsVerified() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "email not verified").
			WithDetails(map[string]any{"needsVerification": true})
	}

	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	return &LoginResult{Token: token, User: user}, nil
}

func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := NewRepository(s.db.DB()).FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	code, err := otp.GenerateCode(s.otpCfg.Length)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	expiry := s.now().Add(s.otpCfg.TTL)
	user.OTPCode = &code
	user.OTPExpiresAt = &expiry

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Save(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store otp")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserPasswordResetRequested,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Data: payloads.UserEvent{
				UserID:   user.ID,
				Username: user.Username,
				Email:    user.Email,
				OTP:      code,
			},
			Version: 1,
		})
	})
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	user, err := NewRepository(s.db.DB()).FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	if user.OTPCode == nil || *user.OTPCode != req.OTP {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid otp")
	}
	if user.OTPExpiresAt == nil || s.now().After(*user.OTPExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "otp expired")
	}

	passwordHash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user.PasswordHash = passwordHash
	user.OTPCode = nil
	user.OTPExpiresAt = nil

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Save(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserPasswordResetCompleted,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Data: payloads.UserEvent{
				UserID:   user.ID,
				Username: user.Username,
				Email:    user.Email,
			},
			Version: 1,
		})
	})
}

func (s *service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	user, err := NewRepository(s.db.DB()).FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	if user.IsVerified() {
		return nil
	}
	if user.VerificationCode == nil || *user.VerificationCode != req.Token {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid verification code")
	}

	now := s.now()
	user.EmailVerifiedAt = &now
	user.VerificationCode = nil

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Save(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark email verified")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserEmailVerified,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Data: payloads.UserEvent{
				UserID:   user.ID,
				Username: user.Username,
				Email:    user.Email,
			},
			Version: 1,
		})
	})
}

func (s *service) ResendVerification(ctx context.Context, req ResendVerificationRequest) error {
	user, err := NewRepository(s.db.DB()).FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	if user.IsVerified() {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already verified")
	}

	code, err := otp.GenerateCode(s.otpCfg.Length)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}
	user.VerificationCode = &code

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Save(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store verification code")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserVerificationResent,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Data: payloads.UserEvent{
				UserID:           user.ID,
				Username:         user.Username,
				Email:            user.Email,
				VerificationCode: code,
			},
			Version: 1,
		})
	})
}
