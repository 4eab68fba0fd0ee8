package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GhostsOptions holds flags for the ghosts command.
type GhostsOptions struct {
	*RootOptions
	Cleanup bool
	DryRun  bool
}

// NewGhostsCommand creates the ghosts command.
func NewGhostsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GhostsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ghosts",
		Short: "List or clean up conversations whose post is gone",
		Long: `List conversations whose post is missing or deleted.

With --cleanup each ghost is deleted, after copying its claims onto the
post when the post row still exists. --dry-run reports without writing.

Examples:
  uniclaim ghosts
  uniclaim ghosts --cleanup --dry-run
  uniclaim ghosts --cleanup --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGhosts(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Cleanup, "cleanup", false, "delete ghost conversations")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "with --cleanup, report without deleting")

	return cmd
}

func runGhosts(opts *GhostsOptions, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if !opts.Cleanup {
		ghosts, err := a.claims.FindGhostConversations(cmd.Context())
		if err != nil {
			return a.out.Fail("find ghosts failed", err)
		}
		lines := make([]string, 0, len(ghosts)+1)
		for _, g := range ghosts {
			lines = append(lines, fmt.Sprintf("%s  post=%s  %s", g.Conversation.ID, g.Conversation.PostID, g.Reason))
		}
		lines = append(lines, fmt.Sprintf("%d ghost conversations.", len(ghosts)))
		return a.out.Success(ghosts, lines...)
	}

	report, err := a.claims.CleanupGhostConversations(cmd.Context(), opts.DryRun)
	if err != nil {
		return a.out.Fail("ghost cleanup failed", err)
	}
	if report.DryRun {
		return a.out.Success(report, fmt.Sprintf("%d ghost conversations would be deleted.", len(report.Ghosts)))
	}
	line := fmt.Sprintf("%d ghost conversations deleted, %d claims preserved.", len(report.Deleted), report.Preserved)
	if len(report.Failed) > 0 {
		a.out.VerboseLog("failed: %v", report.Failed)
		line += fmt.Sprintf(" %d failed.", len(report.Failed))
	}
	return a.out.Success(report, line)
}
