package claims

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniclaim/claimsync/internal/model"
	"github.com/uniclaim/claimsync/internal/store"
	"github.com/uniclaim/claimsync/internal/testutil"
)

// newFileTestService is newTestService over a file-backed fixture, for tests
// that plant corrupt rows with Fixture.Exec.
func newFileTestService(t *testing.T) (*Service, *testutil.Fixture) {
	t.Helper()
	fx := testutil.NewFileFixture(t)
	svc := New(fx.Store,
		WithClock(testutil.NewDeterministicClock()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, fx
}

const insertRawMessage = `INSERT INTO messages
	(id, conversation_id, sender_id, type, claim, created_at)
	VALUES (?, ?, ?, 'claim_request', ?, ?)`

func TestSyncPostClaims_BackfillsMissing(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx := context.Background()

	fx.Post("post-1", model.PostFound)
	fx.Conversation("conv-1", "post-1", "creator-post-1", "u1")
	fx.TextMessage("t1", "conv-1", "u1", "hello")
	m1 := fx.ClaimMessage("c1", "conv-1", "u1", model.ClaimPending)
	fx.Conversation("conv-2", "post-1", "creator-post-1", "u2")
	fx.ClaimMessage("c2", "conv-2", "u2", model.ClaimRejected)
	fx.Conversation("conv-other", "post-2", "x", "y")
	fx.ClaimMessage("c3", "conv-other", "y", model.ClaimPending)

	// c1 is already recorded, with a newer status than its message.
	_, err := svc.AddClaimRequest(ctx, "post-1", model.ClaimRecord{MessageID: "c1", ClaimantID: "u1", RequestedAt: m1.CreatedAt})
	require.NoError(t, err)
	_, err = svc.UpdateClaimRequestStatus(ctx, "post-1", "c1", model.ClaimAccepted, "creator-post-1")
	require.NoError(t, err)

	report, err := svc.SyncPostClaims(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, "post-1", report.PostID)
	assert.Equal(t, 2, report.ConversationsScanned)
	assert.Equal(t, 2, report.ClaimMessages)
	assert.Equal(t, []string{"c2"}, report.Added)

	p := fx.GetPost("post-1")
	require.Len(t, p.ClaimRequests, 2)
	assert.Equal(t, model.ClaimAccepted, p.ClaimRequests[0].Status, "existing record not overwritten")
	assert.Equal(t, "c2", p.ClaimRequests[1].MessageID)
	assert.Equal(t, "conv-2", p.ClaimRequests[1].ConversationID)
	assert.Equal(t, model.ClaimRejected, p.ClaimRequests[1].Status)
}

func TestSyncPostClaims_Idempotent(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx := context.Background()

	fx.Post("post-1", model.PostLost)
	fx.Conversation("conv-1", "post-1")
	fx.ClaimMessage("c1", "conv-1", "u1", model.ClaimPending)

	first, err := svc.SyncPostClaims(ctx, "post-1")
	require.NoError(t, err)
	assert.Len(t, first.Added, 1)
	afterFirst := fx.GetPost("post-1")

	second, err := svc.SyncPostClaims(ctx, "post-1")
	require.NoError(t, err)
	assert.Empty(t, second.Added)
	assert.NotNil(t, second.Added)

	afterSecond := fx.GetPost("post-1")
	assert.Len(t, afterSecond.ClaimRequests, 1)
	assert.True(t, afterFirst.UpdatedAt.Equal(afterSecond.UpdatedAt), "no-op sync does not bump updated_at")
}

func TestSyncPostClaims_MissingPost(t *testing.T) {
	svc, fx, _ := newTestService(t)
	fx.Conversation("conv-1", "gone")
	fx.ClaimMessage("c1", "conv-1", "u1", model.ClaimPending)

	_, err := svc.SyncPostClaims(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestSyncAll(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx := context.Background()

	fx.Post("post-1", model.PostFound)
	fx.Post("post-2", model.PostLost)
	fx.Post("post-3", model.PostFound)
	require.NoError(t, fx.Store.DeletePost(ctx, "post-3"))

	fx.Conversation("conv-1", "post-1")
	fx.ClaimMessage("c1", "conv-1", "u1", model.ClaimPending)
	fx.Conversation("conv-3", "post-3")
	fx.ClaimMessage("c3", "conv-3", "u3", model.ClaimPending)

	reports, err := svc.SyncAll(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2, "deleted posts are skipped")
	assert.Equal(t, []string{"c1"}, reports[0].Added)
	assert.Empty(t, reports[1].Added)
	assert.Empty(t, fx.GetPost("post-3").ClaimRequests)
}

func TestPreserveClaimsBeforeDeletion(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx := context.Background()

	fx.Post("post-1", model.PostFound)
	fx.Conversation("conv-1", "post-1")
	fx.ClaimMessage("c1", "conv-1", "u1", model.ClaimPending)
	fx.Conversation("conv-2", "post-1")
	fx.ClaimMessage("c2", "conv-2", "u2", model.ClaimPending)

	report, err := svc.PreserveClaimsBeforeDeletion(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, report.Added, "only the given conversation is scanned")
	assert.Equal(t, 1, report.ConversationsScanned)
	assert.False(t, report.Ghost)
}

func TestPreserveClaimsBeforeDeletion_MissingConversation(t *testing.T) {
	svc, _, _ := newTestService(t)

	report, err := svc.PreserveClaimsBeforeDeletion(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, report.Added)
}

func TestPreserveClaimsBeforeDeletion_Ghost(t *testing.T) {
	svc, fx, _ := newTestService(t)
	fx.Conversation("conv-1", "gone")
	fx.ClaimMessage("c1", "conv-1", "u1", model.ClaimPending)

	report, err := svc.PreserveClaimsBeforeDeletion(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.True(t, report.Ghost)
	assert.Empty(t, report.Added)
}

func TestDeleteConversation_PreservesThenDeletes(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx := context.Background()

	fx.Post("post-1", model.PostFound)
	fx.Conversation("conv-1", "post-1")
	fx.ClaimMessage("c1", "conv-1", "u1", model.ClaimWithdrawn)

	report, err := svc.DeleteConversation(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, report.Added)

	_, err = fx.Store.GetConversation(ctx, "conv-1")
	assert.Error(t, err)

	p := fx.GetPost("post-1")
	require.Len(t, p.ClaimRequests, 1)
	assert.Equal(t, model.ClaimWithdrawn, p.ClaimRequests[0].Status)

	_, err = svc.DeleteConversation(ctx, "conv-1")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestDeleteConversation_GhostStillDeleted(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx := context.Background()

	fx.Conversation("conv-1", "gone")
	fx.ClaimMessage("c1", "conv-1", "u1", model.ClaimPending)

	report, err := svc.DeleteConversation(ctx, "conv-1")
	require.NoError(t, err)
	assert.True(t, report.Ghost)

	convs, err := fx.Store.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestSyncPostClaims_SkipsUnreadableConversations(t *testing.T) {
	svc, fx := newFileTestService(t)
	ctx := context.Background()

	fx.Post("post-1", model.PostFound)
	fx.Conversation("conv-good", "post-1")
	fx.ClaimMessage("c1", "conv-good", "u1", model.ClaimPending)

	fx.Conversation("conv-bad-claim", "post-1")
	fx.Exec(insertRawMessage, "c2", "conv-bad-claim", "u2", "{not json", "2025-01-01T00:00:00.000000000Z")
	fx.Conversation("conv-bad-time", "post-1")
	fx.Exec(insertRawMessage, "c3", "conv-bad-time", "u3", `{"status":"pending"}`, "garbage")

	report, err := svc.SyncPostClaims(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.ConversationsSkipped)
	assert.Equal(t, 1, report.ConversationsScanned)
	assert.Equal(t, []string{"c1"}, report.Added)

	p := fx.GetPost("post-1")
	require.Len(t, p.ClaimRequests, 1)
	assert.Equal(t, "c1", p.ClaimRequests[0].MessageID)
}

func TestDeleteConversation_PreservationErrorStillDeletes(t *testing.T) {
	svc, fx := newFileTestService(t)
	ctx := context.Background()

	fx.Post("post-1", model.PostFound)
	fx.Conversation("conv-1", "post-1")
	fx.ClaimMessage("c1", "conv-1", "u1", model.ClaimPending)
	fx.Exec(`UPDATE posts SET claim_requests = '{broken' WHERE id = ?`, "post-1")

	_, err := svc.PreserveClaimsBeforeDeletion(ctx, "conv-1")
	require.Error(t, err, "corrupt claim history cannot be rewritten")

	report, err := svc.DeleteConversation(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, report.Added)

	_, err = fx.Store.GetConversation(ctx, "conv-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
