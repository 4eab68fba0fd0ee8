package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uniclaim/claimsync/internal/model"
)

// ClaimAddOptions holds flags for the claim add command.
type ClaimAddOptions struct {
	*RootOptions
	Conversation string
	Claimant     string
	Name         string
	Email        string
	Reason       string
	IDPhoto      string
	Evidence     []string
}

// NewClaimCommand creates the claim command group.
func NewClaimCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Record and answer claim requests",
	}
	cmd.AddCommand(newClaimAddCommand(rootOpts))
	cmd.AddCommand(newClaimStatusCommand(rootOpts))
	return cmd
}

func newClaimAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClaimAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <post-id> <message-id>",
		Short: "Append a claim request to a post's claim history",
		Long: `Append a claim request to a post's claim history.

Adding a message ID the post already records is a no-op.

Example:
  uniclaim claim add post-1 msg-42 --claimant u7 --conversation conv-3 --reason "my initials"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClaimAdd(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Conversation, "conversation", "", "conversation the request was made in")
	cmd.Flags().StringVar(&opts.Claimant, "claimant", "", "claimant user ID (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "claimant display name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "claimant email")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "why the claimant believes the item is theirs")
	cmd.Flags().StringVar(&opts.IDPhoto, "id-photo", "", "URL of the claimant's ID photo")
	cmd.Flags().StringSliceVar(&opts.Evidence, "evidence", nil, "evidence photo URLs")
	_ = cmd.MarkFlagRequired("claimant")

	return cmd
}

func runClaimAdd(opts *ClaimAddOptions, postID, messageID string, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	rec := model.ClaimRecord{
		MessageID:      messageID,
		ConversationID: opts.Conversation,
		ClaimantID:     opts.Claimant,
		ClaimantName:   opts.Name,
		ClaimantEmail:  opts.Email,
		Reason:         opts.Reason,
		IDPhotoURL:     opts.IDPhoto,
		EvidencePhotos: opts.Evidence,
		Status:         model.ClaimPending,
	}
	added, err := a.claims.AddClaimRequest(cmd.Context(), postID, rec)
	if err != nil {
		return a.out.Fail("add claim failed", err)
	}

	line := fmt.Sprintf("Claim %s added to %s.", messageID, postID)
	if !added {
		line = fmt.Sprintf("Claim %s already recorded on %s.", messageID, postID)
	}
	return a.out.Success(map[string]any{"post_id": postID, "message_id": messageID, "added": added}, line)
}

// ClaimStatusOptions holds flags for the claim status command.
type ClaimStatusOptions struct {
	*RootOptions
	By string
}

func newClaimStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClaimStatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status <post-id> <message-id> <pending|accepted|rejected|withdrawn>",
		Short: "Answer a claim request",
		Long: `Set the status of one claim record on a post.

Accepted, rejected and withdrawn are final.

Example:
  uniclaim claim status post-1 msg-42 accepted --by creator-1`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClaimStatus(opts, args[0], args[1], model.ClaimStatus(args[2]), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.By, "by", "", "ID of the user answering the claim")

	return cmd
}

func runClaimStatus(opts *ClaimStatusOptions, postID, messageID string, status model.ClaimStatus, cmd *cobra.Command) error {
	if !status.Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid claim status %q", status))
	}

	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	rec, err := a.claims.UpdateClaimRequestStatus(cmd.Context(), postID, messageID, status, opts.By)
	if err != nil {
		return a.out.Fail("update claim failed", err)
	}
	return a.out.Success(rec, fmt.Sprintf("Claim %s on %s is now %s.", messageID, postID, rec.Status))
}
