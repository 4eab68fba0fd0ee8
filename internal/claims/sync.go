package claims

import (
	"context"
	"errors"
	"fmt"

	"github.com/uniclaim/claimsync/internal/model"
	"github.com/uniclaim/claimsync/internal/store"
)

// SyncReport summarizes one backfill pass over a post.
type SyncReport struct {
	PostID               string   `json:"post_id"`
	ConversationsScanned int      `json:"conversations_scanned"`
	ConversationsSkipped int      `json:"conversations_skipped"`
	ClaimMessages        int      `json:"claim_messages"`
	Added                []string `json:"added"`

	// Ghost is set when the conversation's post no longer exists, so
	// nothing could be preserved.
	Ghost bool `json:"ghost,omitempty"`
}

// SyncPostClaims scans every conversation about postID and appends a claim
// record for each claim-request message the post's history is missing.
//
// Existing records are never modified, so a status set through
// UpdateClaimRequestStatus is not overwritten by a stale message.
func (s *Service) SyncPostClaims(ctx context.Context, postID string) (SyncReport, error) {
	convs, err := s.store.ListConversationsByPost(ctx, postID)
	if err != nil {
		return SyncReport{PostID: postID, Added: []string{}}, fmt.Errorf("sync post claims: %w", err)
	}
	return s.backfill(ctx, postID, convs)
}

// SyncAll runs SyncPostClaims for every post that is not deleted. A failure
// on one post is logged and the pass continues.
func (s *Service) SyncAll(ctx context.Context) ([]SyncReport, error) {
	posts, err := s.store.ListPosts(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("sync all: %w", err)
	}

	reports := []SyncReport{}
	for _, p := range posts {
		if p.Status == model.PostDeleted {
			continue
		}
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := s.SyncPostClaims(ctx, p.ID)
		if err != nil {
			s.logger.Warn("sync failed", "post", p.ID, "error", err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// PreserveClaimsBeforeDeletion copies the claim requests of one
// conversation onto its post before the conversation is deleted.
//
// A conversation that does not exist has nothing to preserve and returns an
// empty report. A conversation whose post is gone is a ghost: the report is
// marked Ghost and no error is returned.
func (s *Service) PreserveClaimsBeforeDeletion(ctx context.Context, conversationID string) (SyncReport, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if errors.Is(err, store.ErrNotFound) {
		return SyncReport{Added: []string{}}, nil
	}
	if err != nil {
		return SyncReport{Added: []string{}}, fmt.Errorf("preserve claims: %w", err)
	}

	report, err := s.backfill(ctx, conv.PostID, []model.Conversation{conv})
	if errors.Is(err, ErrPostNotFound) {
		s.logger.Warn("conversation references missing post; nothing preserved",
			"conversation", conversationID, "post", conv.PostID)
		report.Ghost = true
		return report, nil
	}
	return report, err
}

// DeleteConversation preserves a conversation's claims and then deletes it.
// Preservation is best effort: a failure is logged and deletion proceeds.
func (s *Service) DeleteConversation(ctx context.Context, conversationID string) (SyncReport, error) {
	report, err := s.PreserveClaimsBeforeDeletion(ctx, conversationID)
	if err != nil {
		s.logger.Warn("claim preservation failed; deleting anyway",
			"conversation", conversationID, "error", err)
	}

	if err := s.store.DeleteConversation(ctx, conversationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return report, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
		}
		return report, fmt.Errorf("delete conversation: %w", err)
	}

	s.logger.Info("conversation deleted",
		"conversation", conversationID, "preserved", len(report.Added))
	return report, nil
}

// backfill reads the claim messages of convs and appends the missing
// records to postID in a single transaction.
func (s *Service) backfill(ctx context.Context, postID string, convs []model.Conversation) (SyncReport, error) {
	report := SyncReport{PostID: postID, Added: []string{}}

	var candidates []model.ClaimRecord
	for _, conv := range convs {
		msgs, err := s.store.ListClaimMessages(ctx, conv.ID)
		if err != nil {
			s.logger.Warn("skipping conversation during claim sync",
				"post", postID, "conversation", conv.ID, "error", err)
			report.ConversationsSkipped++
			continue
		}
		report.ConversationsScanned++

		for _, msg := range msgs {
			rec, ok := model.ClaimFromMessage(msg)
			if !ok {
				continue
			}
			report.ClaimMessages++
			candidates = append(candidates, rec)
		}
	}

	_, err := s.store.UpdatePost(ctx, postID, func(p *model.Post) error {
		report.Added = report.Added[:0]
		have := p.ClaimIDs()
		for _, rec := range candidates {
			if have[rec.MessageID] {
				continue
			}
			have[rec.MessageID] = true
			p.ClaimRequests = append(p.ClaimRequests, rec)
			report.Added = append(report.Added, rec.MessageID)
		}
		if len(report.Added) > 0 {
			p.UpdatedAt = s.clock.Now()
		}
		return nil
	})
	if err != nil {
		return report, translate(err, postID)
	}

	if len(report.Added) > 0 {
		s.logger.Info("claim history backfilled",
			"post", postID, "added", len(report.Added), "scanned", report.ConversationsScanned)
	}
	return report, nil
}
