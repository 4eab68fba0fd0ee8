package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/uniclaim/claimsync/internal/claims"
	"github.com/uniclaim/claimsync/internal/model"
	"github.com/uniclaim/claimsync/internal/store"
	"github.com/uniclaim/claimsync/internal/testutil"
	"github.com/uniclaim/claimsync/internal/turnover"
)

// errorCodes maps expect_error names to the errors they match.
var errorCodes = map[string][]error{
	"post_not_found":         {claims.ErrPostNotFound, turnover.ErrPostNotFound, store.ErrNotFound},
	"claim_not_found":        {claims.ErrClaimNotFound},
	"invalid_transition":     {claims.ErrInvalidTransition},
	"invalid_claim":          {claims.ErrInvalidClaim},
	"conversation_not_found": {claims.ErrConversationNotFound},
	"wrong_post_type":        {turnover.ErrWrongPostType},
	"invalid_state":          {turnover.ErrInvalidState},
	"invalid_destination":    {turnover.ErrInvalidDestination},
}

// seedStart is the timestamp of the first seeded document. The clock used by
// the services starts at testutil.Epoch, a day later.
var seedStart = testutil.Epoch.Add(-24 * time.Hour)

// Harness runs one scenario against its own store.
type Harness struct {
	store    *store.Store
	claims   *claims.Service
	turnover *turnover.Service
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. The
// returned error is reserved for infrastructure failures (store, seeding);
// behavioural failures are reported in Result.
func Run(scenario *Scenario) (*Result, error) {
	result, _, err := run(scenario)
	return result, err
}

// run executes the scenario and also returns the final posts, read before
// the store is closed.
func run(scenario *Scenario) (*Result, []model.Post, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewDeterministicClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store:    st,
		claims:   claims.New(st, claims.WithClock(clock), claims.WithLogger(logger)),
		turnover: turnover.New(st, turnover.WithClock(clock), turnover.WithLogger(logger)),
	}

	if err := h.seed(ctx, scenario.Setup); err != nil {
		return nil, nil, fmt.Errorf("setup failed: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		detail, stepErr := h.execute(ctx, step)
		result.Steps = append(result.Steps, StepResult{Index: i, Op: step.Op, Detail: detail, Err: stepErr})
		checkStepError(result, i, step, stepErr)
	}

	if err := checkExpectations(ctx, st, scenario.Expect, result); err != nil {
		return nil, nil, err
	}

	posts, err := st.ListPosts(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read final posts: %w", err)
	}
	return result, posts, nil
}

// seed writes the setup documents with timestamps one minute apart.
func (h *Harness) seed(ctx context.Context, setup Setup) error {
	at := seedStart
	tick := func() time.Time {
		at = at.Add(time.Minute)
		return at
	}

	for _, ps := range setup.Posts {
		status := ps.Status
		if status == "" {
			status = model.PostPending
		}
		title := ps.Title
		if title == "" {
			title = "Item " + ps.ID
		}
		created := tick()
		p := model.Post{
			ID:        ps.ID,
			Title:     title,
			Type:      ps.Type,
			Status:    status,
			CreatorID: "creator-" + ps.ID,
			CreatedAt: created,
			UpdatedAt: created,
		}
		msgIDs := make([]string, 0, len(ps.Claims))
		for msgID := range ps.Claims {
			msgIDs = append(msgIDs, msgID)
		}
		slices.Sort(msgIDs)
		for _, msgID := range msgIDs {
			p.ClaimRequests = append(p.ClaimRequests, model.ClaimRecord{
				MessageID:   msgID,
				ClaimantID:  "seeded-" + msgID,
				Status:      model.ClaimStatus(ps.Claims[msgID]),
				RequestedAt: created,
			})
		}
		if err := h.store.CreatePost(ctx, p); err != nil {
			return fmt.Errorf("post %s: %w", ps.ID, err)
		}
	}

	for _, cs := range setup.Conversations {
		c := model.Conversation{ID: cs.ID, PostID: cs.PostID, Participants: cs.Participants, CreatedAt: tick()}
		if err := h.store.CreateConversation(ctx, c); err != nil {
			return fmt.Errorf("conversation %s: %w", cs.ID, err)
		}
	}

	for _, ms := range setup.Messages {
		m := model.Message{
			ID:             ms.ID,
			ConversationID: ms.ConversationID,
			SenderID:       ms.SenderID,
			SenderName:     ms.SenderName,
			Type:           ms.Type,
			Text:           ms.Text,
			CreatedAt:      tick(),
		}
		if ms.Claim != nil {
			m.Claim = &model.ClaimData{Reason: ms.Claim.Reason, Status: ms.Claim.Status}
		}
		if err := h.store.AddMessage(ctx, m); err != nil {
			return fmt.Errorf("message %s: %w", ms.ID, err)
		}
	}
	return nil
}

// execute runs one step and returns a short description of what it did.
func (h *Harness) execute(ctx context.Context, step Step) (string, error) {
	switch step.Op {
	case OpAddClaim:
		rec := model.ClaimRecord{
			MessageID:      step.Message,
			ConversationID: step.Conversation,
			ClaimantID:     step.Claimant,
			Reason:         step.Reason,
			Status:         step.Status,
		}
		if rec.Status == "" {
			rec.Status = model.ClaimPending
		}
		added, err := h.claims.AddClaimRequest(ctx, step.Post, rec)
		return fmt.Sprintf("added=%t", added), err

	case OpUpdateClaim:
		rec, err := h.claims.UpdateClaimRequestStatus(ctx, step.Post, step.Message, step.Status, step.By)
		return fmt.Sprintf("status=%s", rec.Status), err

	case OpSync:
		report, err := h.claims.SyncPostClaims(ctx, step.Post)
		return fmt.Sprintf("added=%d", len(report.Added)), err

	case OpSyncAll:
		reports, err := h.claims.SyncAll(ctx)
		return fmt.Sprintf("posts=%d", len(reports)), err

	case OpPreserve:
		report, err := h.claims.PreserveClaimsBeforeDeletion(ctx, step.Conversation)
		return fmt.Sprintf("added=%d ghost=%t", len(report.Added), report.Ghost), err

	case OpDeleteConversation:
		report, err := h.claims.DeleteConversation(ctx, step.Conversation)
		return fmt.Sprintf("preserved=%d", len(report.Added)), err

	case OpDeletePost:
		return "", h.store.DeletePost(ctx, step.Post)

	case OpPurgePost:
		return "", h.store.PurgePost(ctx, step.Post)

	case OpCleanupGhosts:
		report, err := h.claims.CleanupGhostConversations(ctx, step.DryRun)
		return fmt.Sprintf("ghosts=%d deleted=%d", len(report.Ghosts), len(report.Deleted)), err

	case OpInitiateTurnover:
		dest := step.Destination
		if dest == "" {
			dest = model.TurnoverOSA
		}
		_, err := h.turnover.Initiate(ctx, step.Post, dest, step.By)
		return string(dest), err

	case OpConfirmTurnover:
		_, err := h.turnover.Confirm(ctx, step.Post, step.Received, step.By, step.Notes)
		return fmt.Sprintf("received=%t", step.Received), err

	case OpCollect:
		p, err := h.turnover.MarkCollected(ctx, step.Post, step.Message, step.By)
		return fmt.Sprintf("status=%s", p.Status), err
	}
	return "", fmt.Errorf("unknown op %q", step.Op)
}

// checkStepError compares a step's error with its expect_error.
func checkStepError(result *Result, i int, step Step, err error) {
	if step.ExpectError == "" {
		if err != nil {
			result.AddError("step %d (%s): unexpected error: %v", i, step.Op, err)
		}
		return
	}
	if err == nil {
		result.AddError("step %d (%s): expected error %s, got none", i, step.Op, step.ExpectError)
		return
	}
	for _, target := range errorCodes[step.ExpectError] {
		if errors.Is(err, target) {
			return
		}
	}
	result.AddError("step %d (%s): expected error %s, got: %v", i, step.Op, step.ExpectError, err)
}
