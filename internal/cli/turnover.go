package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uniclaim/claimsync/internal/model"
)

// TurnoverOptions holds flags shared by the turnover subcommands.
type TurnoverOptions struct {
	*RootOptions
	By          string
	Destination string
	NotReceived bool
	Notes       string
}

// NewTurnoverCommand creates the turnover command group.
func NewTurnoverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TurnoverOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "turnover",
		Short: "Hand found items to OSA or Campus Security",
		Long: `Hand a found item to the Office of Student Affairs or Campus Security,
record whether they received it, and mark it collected by its owner.

Examples:
  uniclaim turnover initiate post-1 --to osa --by finder-9
  uniclaim turnover confirm post-1 --by osa-staff
  uniclaim turnover confirm post-1 --not-received --notes "not at the desk"
  uniclaim turnover collect post-1 msg-42 --by osa-staff`,
	}
	cmd.PersistentFlags().StringVar(&opts.By, "by", "", "ID of the user performing the step")

	initiate := &cobra.Command{
		Use:           "initiate <post-id>",
		Short:         "Start a turnover",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurnoverInitiate(opts, args[0], cmd)
		},
	}
	initiate.Flags().StringVar(&opts.Destination, "to", string(model.TurnoverOSA), "destination (osa|campus_security)")

	confirm := &cobra.Command{
		Use:           "confirm <post-id>",
		Short:         "Record whether the destination received the item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurnoverConfirm(opts, args[0], cmd)
		},
	}
	confirm.Flags().BoolVar(&opts.NotReceived, "not-received", false, "the item never arrived")
	confirm.Flags().StringVar(&opts.Notes, "notes", "", "free-text notes")

	collect := &cobra.Command{
		Use:           "collect <post-id> <message-id>",
		Short:         "Resolve a post collected by an accepted claimant",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurnoverCollect(opts, args[0], args[1], cmd)
		},
	}

	cmd.AddCommand(initiate, confirm, collect)
	return cmd
}

func runTurnoverInitiate(opts *TurnoverOptions, postID string, cmd *cobra.Command) error {
	dest := model.TurnoverDestination(opts.Destination)
	if !dest.Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid destination %q", dest))
	}

	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.turnover.Initiate(cmd.Context(), postID, dest, opts.By)
	if err != nil {
		return a.out.Fail("turnover failed", err)
	}
	return a.out.Success(p, fmt.Sprintf("%s turned over to %s, awaiting confirmation.", postID, dest))
}

func runTurnoverConfirm(opts *TurnoverOptions, postID string, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.turnover.Confirm(cmd.Context(), postID, !opts.NotReceived, opts.By, opts.Notes)
	if err != nil {
		return a.out.Fail("confirm failed", err)
	}
	return a.out.Success(p, fmt.Sprintf("Turnover of %s: %s.", postID, p.Turnover.Status))
}

func runTurnoverCollect(opts *TurnoverOptions, postID, messageID string, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.turnover.MarkCollected(cmd.Context(), postID, messageID, opts.By)
	if err != nil {
		return a.out.Fail("collect failed", err)
	}
	return a.out.Success(p, fmt.Sprintf("%s collected; post is %s.", postID, p.Status))
}
