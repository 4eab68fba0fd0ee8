package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/uniclaim/claimsync/internal/model"
)

// Scenario defines one reconciliation test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup is written straight to the store before any step runs.
	Setup Setup `yaml:"setup"`

	// Steps run in order through the services.
	Steps []Step `yaml:"steps"`

	// Expect is checked against the store after the last step.
	Expect Expect `yaml:"expect"`
}

// Setup lists the documents to seed.
type Setup struct {
	Posts         []PostSeed         `yaml:"posts,omitempty"`
	Conversations []ConversationSeed `yaml:"conversations,omitempty"`
	Messages      []MessageSeed      `yaml:"messages,omitempty"`
}

// PostSeed is a post to create. Status defaults to pending.
type PostSeed struct {
	ID     string            `yaml:"id"`
	Type   model.PostType    `yaml:"type"`
	Status model.PostStatus  `yaml:"status,omitempty"`
	Title  string            `yaml:"title,omitempty"`
	Claims map[string]string `yaml:"claims,omitempty"`
}

// ConversationSeed is a conversation to create.
type ConversationSeed struct {
	ID           string   `yaml:"id"`
	PostID       string   `yaml:"post_id"`
	Participants []string `yaml:"participants,omitempty"`
}

// MessageSeed is a message to add. Messages are timestamped in listed
// order.
type MessageSeed struct {
	ID             string            `yaml:"id"`
	ConversationID string            `yaml:"conversation_id"`
	SenderID       string            `yaml:"sender_id"`
	SenderName     string            `yaml:"sender_name,omitempty"`
	Type           model.MessageType `yaml:"type"`
	Text           string            `yaml:"text,omitempty"`
	Claim          *ClaimSeed        `yaml:"claim,omitempty"`
}

// ClaimSeed is the payload of a claim_request message.
type ClaimSeed struct {
	Reason string            `yaml:"reason,omitempty"`
	Status model.ClaimStatus `yaml:"status,omitempty"`
}

// Step is one service call. Which fields apply depends on Op.
type Step struct {
	Op           string                    `yaml:"op"`
	Post         string                    `yaml:"post,omitempty"`
	Conversation string                    `yaml:"conversation,omitempty"`
	Message      string                    `yaml:"message,omitempty"`
	Claimant     string                    `yaml:"claimant,omitempty"`
	Reason       string                    `yaml:"reason,omitempty"`
	Status       model.ClaimStatus         `yaml:"status,omitempty"`
	By           string                    `yaml:"by,omitempty"`
	Destination  model.TurnoverDestination `yaml:"destination,omitempty"`
	Received     bool                      `yaml:"received,omitempty"`
	Notes        string                    `yaml:"notes,omitempty"`
	DryRun       bool                      `yaml:"dry_run,omitempty"`

	// ExpectError names the error the step must fail with (see errorCodes).
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Expect describes the final state.
type Expect struct {
	Posts []PostExpect `yaml:"posts,omitempty"`

	// Conversations, when set, is the exact set of conversation IDs left.
	Conversations *[]string `yaml:"conversations,omitempty"`
}

// PostExpect checks one post. Claims maps message ID to status and must
// match the post's history exactly. Empty fields are not checked.
type PostExpect struct {
	ID       string               `yaml:"id"`
	Status   model.PostStatus     `yaml:"status,omitempty"`
	Claims   map[string]string    `yaml:"claims,omitempty"`
	Turnover model.TurnoverStatus `yaml:"turnover,omitempty"`
}

// Step operations.
const (
	OpAddClaim           = "add_claim"
	OpUpdateClaim        = "update_claim"
	OpSync               = "sync"
	OpSyncAll            = "sync_all"
	OpPreserve           = "preserve"
	OpDeleteConversation = "delete_conversation"
	OpDeletePost         = "delete_post"
	OpPurgePost          = "purge_post"
	OpCleanupGhosts      = "cleanup_ghosts"
	OpInitiateTurnover   = "initiate_turnover"
	OpConfirmTurnover    = "confirm_turnover"
	OpCollect            = "collect"
)

var knownOps = map[string]bool{
	OpAddClaim: true, OpUpdateClaim: true, OpSync: true, OpSyncAll: true,
	OpPreserve: true, OpDeleteConversation: true, OpDeletePost: true,
	OpPurgePost: true, OpCleanupGhosts: true, OpInitiateTurnover: true,
	OpConfirmTurnover: true, OpCollect: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, p := range s.Setup.Posts {
		if p.ID == "" {
			return fmt.Errorf("setup.posts[%d]: id is required", i)
		}
		if !p.Type.Valid() {
			return fmt.Errorf("setup.posts[%d]: invalid type %q", i, p.Type)
		}
		if p.Status != "" && !p.Status.Valid() {
			return fmt.Errorf("setup.posts[%d]: invalid status %q", i, p.Status)
		}
	}
	for i, m := range s.Setup.Messages {
		if !m.Type.Valid() {
			return fmt.Errorf("setup.messages[%d]: invalid type %q", i, m.Type)
		}
	}
	for i, step := range s.Steps {
		if !knownOps[step.Op] {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.ExpectError != "" {
			if _, ok := errorCodes[step.ExpectError]; !ok {
				return fmt.Errorf("steps[%d]: unknown expect_error %q", i, step.ExpectError)
			}
		}
	}
	return nil
}
