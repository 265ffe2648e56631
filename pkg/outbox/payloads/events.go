// Package payloads holds the typed event data shared by producers and the
// notifier consumer. Fields marshal with the same names on both sides.
package payloads

import "github.com/google/uuid"

// UserEvent is the data block for user_* events.
type UserEvent struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`

	// VerificationCode rides on registration/resend events; OTP rides on
	// password reset requests. Only the notifier reads them.
	VerificationCode string `json:"verificationCode,omitempty"`
	OTP              string `json:"otp,omitempty"`
}

// ComplaintEvent is the data block for complaint_* events.
type ComplaintEvent struct {
	ComplaintID  uuid.UUID `json:"complaintId"`
	UserID       uuid.UUID `json:"userId"`
	Subject      string    `json:"subject"`
	Status       string    `json:"status"`
	ReviewerName string    `json:"reviewerName,omitempty"`
	Note         string    `json:"note,omitempty"`
}
