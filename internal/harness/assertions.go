package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/uniclaim/claimsync/internal/store"
)

// checkExpectations compares the final store state with expect and records
// every mismatch on result. Only read failures are returned as errors.
func checkExpectations(ctx context.Context, st *store.Store, expect Expect, result *Result) error {
	for _, pe := range expect.Posts {
		if err := checkPost(ctx, st, pe, result); err != nil {
			return err
		}
	}

	if expect.Conversations != nil {
		convs, err := st.ListConversations(ctx)
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", err)
		}
		got := make([]string, 0, len(convs))
		for _, c := range convs {
			got = append(got, c.ID)
		}
		want := slices.Clone(*expect.Conversations)
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			result.AddError("conversations: expected %v, got %v", want, got)
		}
	}
	return nil
}

func checkPost(ctx context.Context, st *store.Store, pe PostExpect, result *Result) error {
	p, err := st.GetPost(ctx, pe.ID)
	if errors.Is(err, store.ErrNotFound) {
		result.AddError("post %s: not found", pe.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read post %s: %w", pe.ID, err)
	}

	if pe.Status != "" && p.Status != pe.Status {
		result.AddError("post %s: expected status %s, got %s", pe.ID, pe.Status, p.Status)
	}

	if pe.Turnover != "" {
		switch {
		case p.Turnover == nil:
			result.AddError("post %s: expected turnover %s, got none", pe.ID, pe.Turnover)
		case p.Turnover.Status != pe.Turnover:
			result.AddError("post %s: expected turnover %s, got %s", pe.ID, pe.Turnover, p.Turnover.Status)
		}
	}

	if pe.Claims == nil {
		return nil
	}
	got := make(map[string]string, len(p.ClaimRequests))
	for _, c := range p.ClaimRequests {
		got[c.MessageID] = string(c.Status)
	}
	for id, want := range pe.Claims {
		status, ok := got[id]
		switch {
		case !ok:
			result.AddError("post %s: missing claim %s", pe.ID, id)
		case status != want:
			result.AddError("post %s: claim %s expected %s, got %s", pe.ID, id, want, status)
		}
	}
	for id := range got {
		if _, ok := pe.Claims[id]; !ok {
			result.AddError("post %s: unexpected claim %s", pe.ID, id)
		}
	}
	return nil
}
