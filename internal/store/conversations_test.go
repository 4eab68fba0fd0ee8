package store

import (
	"context"
	"errors"
	"testing"

	"github.com/uniclaim/claimsync/internal/model"
)

func TestConversation_CreateGetList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedConversation(t, s, "conv-1", "post-1")
	seedConversation(t, s, "conv-2", "post-2")

	c, err := s.GetConversation(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetConversation() failed: %v", err)
	}
	if c.PostID != "post-1" || len(c.Participants) != 2 {
		t.Errorf("GetConversation() = %+v", c)
	}

	byPost, err := s.ListConversationsByPost(ctx, "post-1")
	if err != nil {
		t.Fatalf("ListConversationsByPost() failed: %v", err)
	}
	if len(byPost) != 1 || byPost[0].ID != "conv-1" {
		t.Errorf("ListConversationsByPost() = %+v", byPost)
	}

	all, err := s.ListConversations(ctx)
	if err != nil {
		t.Fatalf("ListConversations() failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(ListConversations()) = %d, want 2", len(all))
	}

	none, err := s.ListConversationsByPost(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListConversationsByPost() failed: %v", err)
	}
	if none == nil {
		t.Error("ListConversationsByPost() returned nil, want empty slice")
	}
}

func TestGetConversation_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetConversation(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConversation() error = %v, want ErrNotFound", err)
	}
}

func TestMessages_OrderAndClaimFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedConversation(t, s, "conv-1", "post-1")

	msgs, err := s.ListMessages(ctx, "conv-1")
	if err != nil {
		t.Fatalf("ListMessages() failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len(ListMessages()) = %d, want 2", len(msgs))
	}
	if msgs[0].ID != "conv-1-text" || msgs[1].ID != "conv-1-claim" {
		t.Errorf("message order = [%s %s], want oldest first", msgs[0].ID, msgs[1].ID)
	}
	if msgs[0].Claim != nil {
		t.Error("text message should carry no claim data")
	}

	claims, err := s.ListClaimMessages(ctx, "conv-1")
	if err != nil {
		t.Fatalf("ListClaimMessages() failed: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("len(ListClaimMessages()) = %d, want 1", len(claims))
	}
	if claims[0].Claim == nil || claims[0].Claim.Reason != "sticker on handle" {
		t.Errorf("claim payload = %+v", claims[0].Claim)
	}
}

func TestAddMessage_RequiresConversation(t *testing.T) {
	s := createTestStore(t)

	err := s.AddMessage(context.Background(), model.Message{
		ID:             "m1",
		ConversationID: "missing",
		SenderID:       "u1",
		Type:           model.MessageText,
		CreatedAt:      baseTime,
	})
	if err == nil {
		t.Error("expected foreign key error for missing conversation")
	}
}

func TestDeleteConversation_CascadesMessages(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedConversation(t, s, "conv-1", "post-1")

	if err := s.DeleteConversation(ctx, "conv-1"); err != nil {
		t.Fatalf("DeleteConversation() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count); err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 0 {
		t.Errorf("messages left after delete = %d, want 0", count)
	}

	if err := s.DeleteConversation(ctx, "conv-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConversation() error = %v, want ErrNotFound", err)
	}
}
