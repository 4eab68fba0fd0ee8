package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/uniclaim/claimsync/internal/model"
)

// Snapshot is the golden representation of a scenario's final state.
// Timestamps are left out; claim order is the order of the post's history.
type Snapshot struct {
	Scenario string         `json:"scenario"`
	Pass     bool           `json:"pass"`
	Posts    []PostSnapshot `json:"posts"`
}

// PostSnapshot is one post in a Snapshot.
type PostSnapshot struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Turnover string          `json:"turnover,omitempty"`
	Claims   []ClaimSnapshot `json:"claims"`
}

// ClaimSnapshot is one claim record in a PostSnapshot.
type ClaimSnapshot struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	ClaimantID     string `json:"claimant_id"`
	Status         string `json:"status"`
	ResponderID    string `json:"responder_id,omitempty"`
}

func newSnapshot(name string, pass bool, posts []model.Post) Snapshot {
	snap := Snapshot{Scenario: name, Pass: pass, Posts: []PostSnapshot{}}
	for _, p := range posts {
		ps := PostSnapshot{ID: p.ID, Status: string(p.Status), Claims: []ClaimSnapshot{}}
		if p.Turnover != nil {
			ps.Turnover = string(p.Turnover.Status)
		}
		for _, c := range p.ClaimRequests {
			ps.Claims = append(ps.Claims, ClaimSnapshot{
				MessageID:      c.MessageID,
				ConversationID: c.ConversationID,
				ClaimantID:     c.ClaimantID,
				Status:         string(c.Status),
				ResponderID:    c.ResponderID,
			})
		}
		snap.Posts = append(snap.Posts, ps)
	}
	return snap
}

// RunWithGolden executes a scenario and compares its final posts against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the scenario result; a golden mismatch fails t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, posts, err := run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(newSnapshot(scenario.Name, result.Pass, posts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}
