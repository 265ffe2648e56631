package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
)

func setupChatTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS chat_messages (
  id TEXT PRIMARY KEY,
  sender_id TEXT NOT NULL,
  receiver_id TEXT NOT NULL,
  message TEXT,
  attachment_url TEXT,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func newChatService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{DB: db.NewWithConn(conn)})
	require.NoError(t, err)
	return svc
}

func TestSend_RequiresMessageOrAttachment(t *testing.T) {
	conn := setupChatTestDB(t)
	svc := newChatService(t, conn)
	ctx := context.Background()

	sender, receiver := uuid.New(), uuid.New()

	_, err := svc.Send(ctx, sender, SendRequest{ReceiverID: receiver})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	blank := "   "
	_, err = svc.Send(ctx, sender, SendRequest{ReceiverID: receiver, Message: &blank})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	url := "https://cdn.example.com/receipt.png"
	msg, err := svc.Send(ctx, sender, SendRequest{ReceiverID: receiver, AttachmentURL: &url})
	require.NoError(t, err)
	assert.Nil(t, msg.Message)
	require.NotNil(t, msg.AttachmentURL)
}

func TestSend_RejectsSelfMessage(t *testing.T) {
	conn := setupChatTestDB(t)
	svc := newChatService(t, conn)

	me := uuid.New()
	text := "hello me"
	_, err := svc.Send(context.Background(), me, SendRequest{ReceiverID: me, Message: &text})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetConversation_BothDirectionsAscending(t *testing.T) {
	conn := setupChatTestDB(t)
	svc := newChatService(t, conn)
	ctx := context.Background()

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	seed := func(from, to uuid.UUID, text string, at time.Time) {
		msg := &models.ChatMessage{SenderID: from, ReceiverID: to, Message: &text}
		require.NoError(t, conn.Create(msg).Error)
		require.NoError(t, conn.Model(msg).Update("created_at", at).Error)
	}

	base := time.Now().Add(-time.Hour)
	seed(alice, bob, "hi bob", base)
	seed(bob, alice, "hi alice", base.Add(time.Minute))
	seed(alice, bob, "how are you", base.Add(2*time.Minute))
	seed(alice, carol, "unrelated", base.Add(3*time.Minute))

	messages, err := svc.GetConversation(ctx, alice, bob)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "hi bob", *messages[0].Message)
	assert.Equal(t, "hi alice", *messages[1].Message)
	assert.Equal(t, "how are you", *messages[2].Message)

	// same thread regardless of which side asks
	mirror, err := svc.GetConversation(ctx, bob, alice)
	require.NoError(t, err)
	assert.Len(t, mirror, 3)
}

func TestListConversations_LatestPerPartner(t *testing.T) {
	conn := setupChatTestDB(t)
	svc := newChatService(t, conn)
	ctx := context.Background()

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	seed := func(from, to uuid.UUID, text string, at time.Time) {
		msg := &models.ChatMessage{SenderID: from, ReceiverID: to, Message: &text}
		require.NoError(t, conn.Create(msg).Error)
		require.NoError(t, conn.Model(msg).Update("created_at", at).Error)
	}

	base := time.Now().Add(-time.Hour)
	seed(alice, bob, "old bob msg", base)
	seed(carol, alice, "carol says hi", base.Add(time.Minute))
	seed(bob, alice, "new bob msg", base.Add(2*time.Minute))

	summaries, err := svc.ListConversations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// most recent conversation first
	assert.Equal(t, bob, summaries[0].PartnerID)
	assert.Equal(t, "new bob msg", *summaries[0].LastMessage.Message)
	assert.Equal(t, carol, summaries[1].PartnerID)
	assert.Equal(t, "carol says hi", *summaries[1].LastMessage.Message)
}

func TestListConversations_EmptyForNewUser(t *testing.T) {
	conn := setupChatTestDB(t)
	svc := newChatService(t, conn)

	summaries, err := svc.ListConversations(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
