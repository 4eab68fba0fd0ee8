package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/uniclaim/claimsync/internal/model"
)

var baseTime = time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPost creates a found post with minimal required fields.
func createTestPost(id string) model.Post {
	return model.Post{
		ID:        id,
		Title:     "Blue umbrella",
		Type:      model.PostFound,
		Status:    model.PostPending,
		CreatorID: "finder-1",
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

// seedConversation inserts a conversation with one claim request and one
// text message.
func seedConversation(t *testing.T, s *Store, convID, postID string) {
	t.Helper()
	ctx := context.Background()
	if err := s.CreateConversation(ctx, model.Conversation{
		ID:           convID,
		PostID:       postID,
		Participants: []string{"finder-1", "claimant-1"},
		CreatedAt:    baseTime,
	}); err != nil {
		t.Fatalf("CreateConversation() failed: %v", err)
	}
	msgs := []model.Message{
		{
			ID:             convID + "-text",
			ConversationID: convID,
			SenderID:       "claimant-1",
			Type:           model.MessageText,
			Text:           "hi, I think that's mine",
			CreatedAt:      baseTime.Add(time.Minute),
		},
		{
			ID:             convID + "-claim",
			ConversationID: convID,
			SenderID:       "claimant-1",
			SenderName:     "Ana",
			Type:           model.MessageClaimRequest,
			Claim:          &model.ClaimData{Reason: "sticker on handle", Status: model.ClaimPending},
			CreatedAt:      baseTime.Add(2 * time.Minute),
		},
	}
	for _, m := range msgs {
		if err := s.AddMessage(ctx, m); err != nil {
			t.Fatalf("AddMessage(%s) failed: %v", m.ID, err)
		}
	}
}
