package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casedesk/casedesk-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username        string         `gorm:"column:username;type:text;not null"`
	Email           string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string         `gorm:"column:password_hash;not null"`
	Phone           *string        `gorm:"column:phone"`
	Role            enums.UserRole `gorm:"column:role;type:text;not null"`
	GroupID         *uuid.UUID     `gorm:"column:group_id;type:uuid"`
	EmailVerifiedAt *time.Time     `gorm:"column:email_verified_at"`

	// One-time codes. Verification covers the email address; OTP covers
	// password reset. Both are cleared on successful use.
	VerificationCode *string    `gorm:"column:verification_code"`
	OTPCode          *string    `gorm:"column:otp_code"`
	OTPExpiresAt     *time.Time `gorm:"column:otp_expires_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsVerified reports whether the user has confirmed their email address.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
