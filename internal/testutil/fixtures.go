package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/uniclaim/claimsync/internal/model"
	"github.com/uniclaim/claimsync/internal/store"
)

// Fixture seeds a store with posts, conversations and messages for tests.
type Fixture struct {
	T     *testing.T
	Store *store.Store
	At    time.Time

	// Path is the database file; empty for in-memory fixtures.
	Path string
}

// NewFixture opens an in-memory store and closes it when the test ends.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return &Fixture{T: t, Store: st, At: Epoch.Add(-24 * time.Hour)}
}

// NewFileFixture opens a store backed by a file in t.TempDir, so Exec can
// reach the same database through a second connection.
func NewFileFixture(t *testing.T) *Fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return &Fixture{T: t, Store: st, At: Epoch.Add(-24 * time.Hour), Path: path}
}

// Exec runs raw SQL against the fixture database, bypassing the store's
// encoding. Tests use it to plant rows the store would never write.
func (f *Fixture) Exec(query string, args ...any) {
	f.T.Helper()
	if f.Path == "" {
		f.T.Fatal("Exec needs a file fixture; use NewFileFixture")
	}
	db, err := sql.Open("sqlite3", f.Path)
	if err != nil {
		f.T.Fatalf("open raw connection: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(query, args...); err != nil {
		f.T.Fatalf("Exec(%q) failed: %v", query, err)
	}
}

// tick returns a fresh timestamp earlier than any DeterministicClock value.
func (f *Fixture) tick() time.Time {
	f.At = f.At.Add(time.Minute)
	return f.At
}

// Post inserts a pending post of the given type.
func (f *Fixture) Post(id string, typ model.PostType) model.Post {
	f.T.Helper()
	at := f.tick()
	p := model.Post{
		ID:        id,
		Title:     "Item " + id,
		Type:      typ,
		Status:    model.PostPending,
		CreatorID: "creator-" + id,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := f.Store.CreatePost(context.Background(), p); err != nil {
		f.T.Fatalf("CreatePost(%s) failed: %v", id, err)
	}
	return p
}

// Conversation inserts a conversation about postID.
func (f *Fixture) Conversation(id, postID string, participants ...string) model.Conversation {
	f.T.Helper()
	c := model.Conversation{ID: id, PostID: postID, Participants: participants, CreatedAt: f.tick()}
	if err := f.Store.CreateConversation(context.Background(), c); err != nil {
		f.T.Fatalf("CreateConversation(%s) failed: %v", id, err)
	}
	return c
}

// ClaimMessage inserts a claim_request message from claimantID.
func (f *Fixture) ClaimMessage(id, convID, claimantID string, status model.ClaimStatus) model.Message {
	f.T.Helper()
	m := model.Message{
		ID:             id,
		ConversationID: convID,
		SenderID:       claimantID,
		SenderName:     "Claimant " + claimantID,
		Type:           model.MessageClaimRequest,
		Claim:          &model.ClaimData{Reason: "it is mine", Status: status},
		CreatedAt:      f.tick(),
	}
	if err := f.Store.AddMessage(context.Background(), m); err != nil {
		f.T.Fatalf("AddMessage(%s) failed: %v", id, err)
	}
	return m
}

// TextMessage inserts a plain text message.
func (f *Fixture) TextMessage(id, convID, senderID, text string) model.Message {
	f.T.Helper()
	m := model.Message{
		ID:             id,
		ConversationID: convID,
		SenderID:       senderID,
		Type:           model.MessageText,
		Text:           text,
		CreatedAt:      f.tick(),
	}
	if err := f.Store.AddMessage(context.Background(), m); err != nil {
		f.T.Fatalf("AddMessage(%s) failed: %v", id, err)
	}
	return m
}

// GetPost reads a post back, failing the test if it is missing.
func (f *Fixture) GetPost(id string) model.Post {
	f.T.Helper()
	p, err := f.Store.GetPost(context.Background(), id)
	if err != nil {
		f.T.Fatalf("GetPost(%s) failed: %v", id, err)
	}
	return p
}
