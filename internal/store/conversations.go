package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uniclaim/claimsync/internal/model"
)

// CreateConversation inserts a new conversation. The referenced post does
// not need to exist.
func (s *Store) CreateConversation(ctx context.Context, c model.Conversation) error {
	participants, err := marshalParticipants(c.Participants)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, post_id, participants, created_at)
		VALUES (?, ?, ?, ?)
	`, c.ID, c.PostID, participants, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation by ID.
// Returns ErrNotFound if the conversation does not exist.
func (s *Store) GetConversation(ctx context.Context, id string) (model.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, post_id, participants, created_at FROM conversations WHERE id = ?
	`, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Conversation{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Conversation{}, fmt.Errorf("get conversation %s: %w", id, err)
	}
	return c, nil
}

// ListConversationsByPost returns every conversation about a post.
func (s *Store) ListConversationsByPost(ctx context.Context, postID string) ([]model.Conversation, error) {
	return s.queryConversations(ctx, `
		SELECT id, post_id, participants, created_at FROM conversations
		WHERE post_id = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, postID)
}

// ListConversations returns every conversation in the store.
func (s *Store) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	return s.queryConversations(ctx, `
		SELECT id, post_id, participants, created_at FROM conversations
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
}

func (s *Store) queryConversations(ctx context.Context, query string, args ...any) ([]model.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	convs := []model.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return convs, nil
}

// DeleteConversation removes a conversation and, by cascade, its messages.
// Returns ErrNotFound if the conversation does not exist.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return requireAffected(result, "conversation", id)
}

// AddMessage inserts a message into an existing conversation.
func (s *Store) AddMessage(ctx context.Context, m model.Message) error {
	claim, err := marshalClaimData(m.Claim)
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages
		(id, conversation_id, sender_id, sender_name, sender_email, type, body, claim, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID,
		m.ConversationID,
		m.SenderID,
		m.SenderName,
		m.SenderEmail,
		string(m.Type),
		m.Text,
		claim,
		formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

// ListMessages returns every message in a conversation, oldest first.
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	return s.queryMessages(ctx, `
		SELECT id, conversation_id, sender_id, sender_name, sender_email, type, body, claim, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, conversationID)
}

// ListClaimMessages returns only the claim_request messages of a
// conversation, oldest first.
func (s *Store) ListClaimMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	return s.queryMessages(ctx, `
		SELECT id, conversation_id, sender_id, sender_name, sender_email, type, body, claim, created_at
		FROM messages
		WHERE conversation_id = ? AND type = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, conversationID, string(model.MessageClaimRequest))
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

func scanConversation(row rowScanner) (model.Conversation, error) {
	var c model.Conversation
	var participants, createdAt string
	if err := row.Scan(&c.ID, &c.PostID, &participants, &createdAt); err != nil {
		return model.Conversation{}, err
	}

	var err error
	if c.Participants, err = unmarshalParticipants(participants); err != nil {
		return model.Conversation{}, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Conversation{}, err
	}
	return c, nil
}

func scanMessage(row rowScanner) (model.Message, error) {
	var m model.Message
	var msgType, createdAt string
	var claim sql.NullString
	if err := row.Scan(
		&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName, &m.SenderEmail,
		&msgType, &m.Text, &claim, &createdAt,
	); err != nil {
		return model.Message{}, fmt.Errorf("scan message: %w", err)
	}

	m.Type = model.MessageType(msgType)

	var err error
	if m.Claim, err = unmarshalClaimData(claim); err != nil {
		return model.Message{}, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Message{}, err
	}
	return m, nil
}
