package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/config"
	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
	"github.com/casedesk/casedesk-backend/pkg/otp"
	"github.com/casedesk/casedesk-backend/pkg/outbox"
	"github.com/casedesk/casedesk-backend/pkg/outbox/payloads"
	"github.com/casedesk/casedesk-backend/pkg/pagination"
)

// View is the safe user projection returned by list and profile endpoints.
type View struct {
	ID            uuid.UUID  `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Phone         *string    `json:"phone,omitempty"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"emailVerified"`
	GroupID       *uuid.UUID `json:"groupId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// NewView projects a user row into its public shape.
func NewView(user models.User) View {
	return View{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Phone:         user.Phone,
		Role:          string(user.Role),
		EmailVerified: user.IsVerified(),
		GroupID:       user.GroupID,
		CreatedAt:     user.CreatedAt,
	}
}

// ListResult wraps a user page and its pagination metadata.
type ListResult struct {
	Users      []View          `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

// UpdateProfileRequest carries a partial profile update.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=2,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"`
}

// Service defines user administration operations.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*ListResult, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*View, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// ServiceParams packages the dependencies for the users service.
type ServiceParams struct {
	DB        *db.Client
	Outbox    *outbox.Service
	OTPConfig config.OTPConfig
}

type service struct {
	db     *db.Client
	outbox *outbox.Service
	otpCfg config.OTPConfig
}

// NewService wires users dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	return &service{
		db:     params.DB,
		outbox: params.Outbox,
		otpCfg: params.OTPConfig,
	}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListResult, error) {
	norm := pagination.Normalize(params)
	repo := NewRepository(s.db.DB())

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}

	rows, err := repo.List(ctx, norm.Offset(), norm.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, NewView(row))
	}

	return &ListResult{
		Users:      views,
		Pagination: pagination.NewMeta(norm, total),
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := NewRepository(s.db.DB()).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}

	emailChanged := false
	var verificationCode string
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			emailChanged = true
			user.Email = email
			// A new address needs a fresh round of verification.
			user.EmailVerifiedAt = nil
			verificationCode, err = otp.GenerateCode(s.otpCfg.Length)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
			}
			user.VerificationCode = &verificationCode
		}
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		if emailChanged {
			if existing, err := repo.FindByEmail(ctx, user.Email); err == nil && existing.ID != user.ID {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
			}
		}

		if err := repo.Save(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "idx_users_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
		}

		if emailChanged {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventUserVerificationResent,
				AggregateType: enums.AggregateUser,
				AggregateID:   user.ID,
				Data: payloads.UserEvent{
					UserID:           user.ID,
					Username:         user.Username,
					Email:            user.Email,
					VerificationCode: verificationCode,
				},
				Version: 1,
			}); err != nil {
				return err
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserProfileUpdated,
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
	if err != nil {
		return nil, err
	}

	view := NewView(*user)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := NewRepository(s.db.DB()).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := NewRepository(tx).Delete(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserDeleted,
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
