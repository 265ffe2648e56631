package enums

import "fmt"

// OutboxAggregateType identifies the entity an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateUser      OutboxAggregateType = "user"
	AggregateComplaint OutboxAggregateType = "complaint"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateUser,
	AggregateComplaint,
}

// IsValid reports whether the value matches the canonical aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType identifies a notification-worthy domain event.
type OutboxEventType string

const (
	EventUserRegistered             OutboxEventType = "user_registered"
	EventUserEmailVerified          OutboxEventType = "user_email_verified"
	EventUserVerificationResent     OutboxEventType = "user_verification_resent"
	EventUserPasswordResetRequested OutboxEventType = "user_password_reset_requested"
	EventUserPasswordResetCompleted OutboxEventType = "user_password_reset_completed"
	EventUserProfileUpdated         OutboxEventType = "user_profile_updated"
	EventUserDeleted                OutboxEventType = "user_deleted"
	EventComplaintCreated           OutboxEventType = "complaint_created"
	EventComplaintAssigned          OutboxEventType = "complaint_assigned"
	EventComplaintFollowUpAdded     OutboxEventType = "complaint_follow_up_added"
	EventComplaintStatusUpdated     OutboxEventType = "complaint_status_updated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventUserRegistered,
	EventUserEmailVerified,
	EventUserVerificationResent,
	EventUserPasswordResetRequested,
	EventUserPasswordResetCompleted,
	EventUserProfileUpdated,
	EventUserDeleted,
	EventComplaintCreated,
	EventComplaintAssigned,
	EventComplaintFollowUpAdded,
	EventComplaintStatusUpdated,
}

// IsValid reports whether the value matches the canonical event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
