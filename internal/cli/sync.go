package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uniclaim/claimsync/internal/claims"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	All bool
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync [post-id]",
		Short: "Backfill claim histories from conversations",
		Long: `Scan the conversations about a post and append every claim request
missing from its claim history. Existing records are never changed.

Examples:
  uniclaim sync post-1
  uniclaim sync --all`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.All == (len(args) == 1) {
				return NewExitError(ExitCommandError, "pass either a post ID or --all")
			}
			postID := ""
			if len(args) == 1 {
				postID = args[0]
			}
			return runSync(opts, postID, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "sync every post that is not deleted")

	return cmd
}

func runSync(opts *SyncOptions, postID string, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if !opts.All {
		report, err := a.claims.SyncPostClaims(cmd.Context(), postID)
		if err != nil {
			return a.out.Fail("sync failed", err)
		}
		return a.out.Success(report, syncLine(report))
	}

	reports, err := a.claims.SyncAll(cmd.Context())
	if err != nil {
		return a.out.Fail("sync failed", err)
	}
	lines := make([]string, 0, len(reports)+1)
	added := 0
	for _, r := range reports {
		lines = append(lines, syncLine(r))
		added += len(r.Added)
	}
	lines = append(lines, fmt.Sprintf("%d posts synced, %d claims added.", len(reports), added))
	return a.out.Success(reports, lines...)
}

func syncLine(r claims.SyncReport) string {
	return fmt.Sprintf("%s: scanned %d conversations, %d claim messages, added %d",
		r.PostID, r.ConversationsScanned, r.ClaimMessages, len(r.Added))
}

// PreserveOptions holds flags for the preserve command.
type PreserveOptions struct {
	*RootOptions
	Delete bool
}

// NewPreserveCommand creates the preserve command.
func NewPreserveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreserveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preserve <conversation-id>",
		Short: "Copy a conversation's claims onto its post",
		Long: `Copy the claim requests of one conversation onto its post's claim
history. With --delete the conversation is deleted afterwards; a failed
preservation does not stop the deletion.

Examples:
  uniclaim preserve conv-3
  uniclaim preserve conv-3 --delete`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreserve(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "delete the conversation after preserving")

	return cmd
}

func runPreserve(opts *PreserveOptions, convID string, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if opts.Delete {
		report, err := a.claims.DeleteConversation(cmd.Context(), convID)
		if err != nil {
			return a.out.Fail("delete conversation failed", err)
		}
		return a.out.Success(report,
			fmt.Sprintf("Conversation %s deleted, %d claims preserved.", convID, len(report.Added)))
	}

	report, err := a.claims.PreserveClaimsBeforeDeletion(cmd.Context(), convID)
	if err != nil {
		return a.out.Fail("preserve failed", err)
	}
	if report.Ghost {
		return a.out.Success(report,
			fmt.Sprintf("Conversation %s belongs to missing post %s; nothing preserved.", convID, report.PostID))
	}
	return a.out.Success(report, fmt.Sprintf("%d claims preserved from %s.", len(report.Added), convID))
}
