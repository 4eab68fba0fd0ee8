package claims

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniclaim/claimsync/internal/model"
)

func TestFindGhostConversations(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx := context.Background()

	fx.Post("live", model.PostFound)
	fx.Post("deleted", model.PostFound)
	require.NoError(t, fx.Store.DeletePost(ctx, "deleted"))

	fx.Conversation("conv-live", "live")
	fx.Conversation("conv-deleted", "deleted")
	fx.Conversation("conv-missing-a", "missing")
	fx.Conversation("conv-missing-b", "missing")

	ghosts, err := svc.FindGhostConversations(ctx)
	require.NoError(t, err)
	require.Len(t, ghosts, 3)

	got := map[string]model.GhostReason{}
	for _, g := range ghosts {
		got[g.Conversation.ID] = g.Reason
	}
	assert.Equal(t, map[string]model.GhostReason{
		"conv-deleted":   model.GhostPostDeleted,
		"conv-missing-a": model.GhostPostMissing,
		"conv-missing-b": model.GhostPostMissing,
	}, got)
}

func TestCleanupGhostConversations_DryRun(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx := context.Background()

	fx.Conversation("conv-missing", "missing")

	report, err := svc.CleanupGhostConversations(ctx, true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Len(t, report.Ghosts, 1)
	assert.Empty(t, report.Deleted)

	convs, err := fx.Store.ListConversations(ctx)
	require.NoError(t, err)
	assert.Len(t, convs, 1, "dry run writes nothing")
}

func TestCleanupGhostConversations_PreservesDeletedPostClaims(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx := context.Background()

	fx.Post("live", model.PostFound)
	fx.Post("deleted", model.PostFound)
	require.NoError(t, fx.Store.DeletePost(ctx, "deleted"))

	fx.Conversation("conv-live", "live")
	fx.ClaimMessage("c-live", "conv-live", "u1", model.ClaimPending)
	fx.Conversation("conv-deleted", "deleted")
	fx.ClaimMessage("c-deleted", "conv-deleted", "u2", model.ClaimPending)
	fx.Conversation("conv-missing", "missing")
	fx.ClaimMessage("c-missing", "conv-missing", "u3", model.ClaimPending)

	report, err := svc.CleanupGhostConversations(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Preserved)
	assert.ElementsMatch(t, []string{"conv-deleted", "conv-missing"}, report.Deleted)
	assert.Empty(t, report.Failed)

	deleted := fx.GetPost("deleted")
	require.Len(t, deleted.ClaimRequests, 1)
	assert.Equal(t, "c-deleted", deleted.ClaimRequests[0].MessageID)

	convs, err := fx.Store.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "conv-live", convs[0].ID)
	assert.Empty(t, fx.GetPost("live").ClaimRequests, "live conversations are not touched")
}
