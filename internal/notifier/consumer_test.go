package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/internal/users"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	"github.com/casedesk/casedesk-backend/pkg/mailer"
	"github.com/casedesk/casedesk-backend/pkg/outbox"
	"github.com/casedesk/casedesk-backend/pkg/outbox/idempotency"
	"github.com/casedesk/casedesk-backend/pkg/outbox/payloads"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail bool
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mailer.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = "1"
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "cd:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func setupNotifierTest(t *testing.T) (*Consumer, *fakeMailer, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	usersTable := `
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
	require.NoError(t, conn.Exec(usersTable).Error)

	idem, err := idempotency.NewManager(newMemoryStore(), time.Hour)
	require.NoError(t, err)

	mail := &fakeMailer{}
	consumer, err := NewConsumer(ConsumerParams{
		Idempotency: idem,
		Mailer:      mail,
		Users:       users.NewRepository(conn),
		SendTimeout: time.Second,
	})
	require.NoError(t, err)
	return consumer, mail, conn
}

func envelopeBytes(t *testing.T, eventID uuid.UUID, data any) []byte {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now(),
		Data:       raw,
	}
	out, err := json.Marshal(envelope)
	require.NoError(t, err)
	return out
}

func TestProcess_UserRegisteredSendsVerificationEmail(t *testing.T) {
	consumer, mail, _ := setupNotifierTest(t)

	payload := payloads.UserEvent{
		UserID:           uuid.New(),
		Username:         "ana",
		Email:            "ana@example.com",
		VerificationCode: "482913",
	}
	retry := consumer.process(context.Background(), "user_registered", envelopeBytes(t, uuid.New(), payload))
	assert.False(t, retry)

	sent := mail.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ana@example.com", sent[0].To)
	assert.Equal(t, "Welcome to CaseDesk - Verify Your Email", sent[0].Subject)
	assert.Contains(t, sent[0].HTMLBody, "482913")
	assert.Contains(t, sent[0].HTMLBody, "ana")
}

func TestProcess_DuplicateEventSendsOnce(t *testing.T) {
	consumer, mail, _ := setupNotifierTest(t)

	eventID := uuid.New()
	payload := payloads.UserEvent{UserID: uuid.New(), Username: "dup", Email: "dup@example.com", OTP: "111111"}
	body := envelopeBytes(t, eventID, payload)

	assert.False(t, consumer.process(context.Background(), "user_password_reset_requested", body))
	assert.False(t, consumer.process(context.Background(), "user_password_reset_requested", body))

	assert.Len(t, mail.messages(), 1)
}

func TestProcess_UnknownEventTypeDropped(t *testing.T) {
	consumer, mail, _ := setupNotifierTest(t)

	retry := consumer.process(context.Background(), "user_promoted", envelopeBytes(t, uuid.New(), payloads.UserEvent{}))
	assert.False(t, retry)
	assert.Empty(t, mail.messages())
}

func TestProcess_SendFailureRetriesAndReleasesMarker(t *testing.T) {
	consumer, mail, _ := setupNotifierTest(t)

	eventID := uuid.New()
	payload := payloads.UserEvent{UserID: uuid.New(), Username: "flaky", Email: "flaky@example.com"}
	body := envelopeBytes(t, eventID, payload)

	mail.fail = true
	assert.True(t, consumer.process(context.Background(), "user_profile_updated", body))

	// redelivery after recovery still goes out: the marker was released
	mail.fail = false
	assert.False(t, consumer.process(context.Background(), "user_profile_updated", body))
	assert.Len(t, mail.messages(), 1)
}

func TestProcess_ComplaintEventLoadsRecipient(t *testing.T) {
	consumer, mail, conn := setupNotifierTest(t)

	user := &models.User{Username: "carla", Email: "carla@example.com", PasswordHash: "x", Role: enums.RoleCustomer}
	require.NoError(t, conn.Create(user).Error)

	payload := payloads.ComplaintEvent{
		ComplaintID:  uuid.New(),
		UserID:       user.ID,
		Subject:      "Broken toaster - Product: X200",
		Status:       "IN_PROGRESS",
		ReviewerName: "Jordan",
	}
	retry := consumer.process(context.Background(), "complaint_assigned", envelopeBytes(t, uuid.New(), payload))
	assert.False(t, retry)

	sent := mail.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "carla@example.com", sent[0].To)
	assert.Equal(t, "Your Complaint is Under Review", sent[0].Subject)
	assert.Contains(t, sent[0].HTMLBody, "Jordan")
}

func TestProcess_ComplaintForDeletedUserDropped(t *testing.T) {
	consumer, mail, _ := setupNotifierTest(t)

	payload := payloads.ComplaintEvent{ComplaintID: uuid.New(), UserID: uuid.New(), Subject: "s", Status: "PENDING"}
	retry := consumer.process(context.Background(), "complaint_created", envelopeBytes(t, uuid.New(), payload))
	assert.False(t, retry)
	assert.Empty(t, mail.messages())
}

func TestProcess_ResolvedStatusUsesClosingTemplate(t *testing.T) {
	consumer, mail, conn := setupNotifierTest(t)

	user := &models.User{Username: "dan", Email: "dan@example.com", PasswordHash: "x", Role: enums.RoleCustomer}
	require.NoError(t, conn.Create(user).Error)

	payload := payloads.ComplaintEvent{ComplaintID: uuid.New(), UserID: user.ID, Subject: "s", Status: "RESOLVED"}
	retry := consumer.process(context.Background(), "complaint_status_updated", envelopeBytes(t, uuid.New(), payload))
	assert.False(t, retry)

	sent := mail.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Your Complaint Has Been Resolved", sent[0].Subject)
	assert.Contains(t, sent[0].HTMLBody, "resolved")
}

func TestRender_EscapesUserContent(t *testing.T) {
	rendered, err := render(enums.EventComplaintFollowUpAdded, templateData{
		Username: "eve",
		Note:     `<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, rendered.HTML, "<script>")
	assert.True(t, strings.Contains(rendered.HTML, "&lt;script&gt;"))
}
