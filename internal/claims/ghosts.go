package claims

import (
	"context"
	"errors"
	"fmt"

	"github.com/uniclaim/claimsync/internal/model"
	"github.com/uniclaim/claimsync/internal/store"
)

// CleanupReport summarizes a ghost-conversation cleanup pass.
type CleanupReport struct {
	DryRun    bool                      `json:"dry_run"`
	Ghosts    []model.GhostConversation `json:"ghosts"`
	Preserved int                       `json:"preserved"`
	Deleted   []string                  `json:"deleted"`
	Failed    []string                  `json:"failed"`
}

// FindGhostConversations returns the conversations whose post is missing or
// deleted.
func (s *Service) FindGhostConversations(ctx context.Context) ([]model.GhostConversation, error) {
	convs, err := s.store.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("find ghost conversations: %w", err)
	}

	// Many conversations share a post; look each post up once.
	reasons := make(map[string]model.GhostReason)
	ghosts := []model.GhostConversation{}
	for _, conv := range convs {
		reason, seen := reasons[conv.PostID]
		if !seen {
			reason, err = s.ghostReason(ctx, conv.PostID)
			if err != nil {
				return nil, err
			}
			reasons[conv.PostID] = reason
		}
		if reason != "" {
			ghosts = append(ghosts, model.GhostConversation{Conversation: conv, Reason: reason})
		}
	}
	return ghosts, nil
}

// ghostReason returns "" for a live post.
func (s *Service) ghostReason(ctx context.Context, postID string) (model.GhostReason, error) {
	p, err := s.store.GetPost(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return model.GhostPostMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("find ghost conversations: %w", err)
	}
	if p.Status == model.PostDeleted {
		return model.GhostPostDeleted, nil
	}
	return "", nil
}

// CleanupGhostConversations deletes every ghost conversation. Claims are
// preserved first when the post row still exists. With dryRun the ghosts
// are reported but nothing is written.
func (s *Service) CleanupGhostConversations(ctx context.Context, dryRun bool) (CleanupReport, error) {
	report := CleanupReport{DryRun: dryRun, Deleted: []string{}, Failed: []string{}}

	ghosts, err := s.FindGhostConversations(ctx)
	if err != nil {
		return report, err
	}
	report.Ghosts = ghosts

	if dryRun {
		return report, nil
	}

	for _, g := range ghosts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		convID := g.Conversation.ID
		if g.Reason == model.GhostPostDeleted {
			preserved, err := s.PreserveClaimsBeforeDeletion(ctx, convID)
			if err != nil {
				s.logger.Warn("claim preservation failed for ghost",
					"conversation", convID, "error", err)
			}
			report.Preserved += len(preserved.Added)
		}

		if err := s.store.DeleteConversation(ctx, convID); err != nil {
			s.logger.Warn("ghost conversation not deleted", "conversation", convID, "error", err)
			report.Failed = append(report.Failed, convID)
			continue
		}
		report.Deleted = append(report.Deleted, convID)
	}

	s.logger.Info("ghost cleanup finished",
		"ghosts", len(ghosts), "deleted", len(report.Deleted), "failed", len(report.Failed))
	return report, nil
}
