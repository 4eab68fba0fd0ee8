package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/uniclaim/claimsync/internal/campus"
)

// LocateOptions holds flags for the locate command.
type LocateOptions struct {
	*RootOptions
	Campus string
}

// LocateResult is the output of the locate command.
type LocateResult struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Location string  `json:"location,omitempty"`
	Found    bool    `json:"found"`
}

// NewLocateCommand creates the locate command.
func NewLocateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LocateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "locate <lat> <lng>",
		Short: "Name the campus location containing a coordinate",
		Long: `Name the campus location whose polygon contains a coordinate.

The built-in location table is used unless --campus or the config's
campus_file names a CUE file.

Example:
  uniclaim locate 8.4858 124.6565`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Campus, "campus", "", "CUE location table (overrides config)")

	return cmd
}

func runLocate(opts *LocateOptions, latArg, lngArg string, cmd *cobra.Command) error {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid latitude", err)
	}
	lng, err := strconv.ParseFloat(lngArg, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid longitude", err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	newLogger(cmd, cfg)

	path := cfg.CampusFile
	if opts.Campus != "" {
		path = opts.Campus
	}
	table, err := loadCampus(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load campus table", err)
	}

	out := opts.formatter(cmd)
	result := LocateResult{Lat: lat, Lng: lng}
	result.Location, result.Found = table.Locate(campus.Point{Lat: lat, Lng: lng})
	if !result.Found {
		return out.Success(result, fmt.Sprintf("%g,%g is not inside any campus location.", lat, lng))
	}
	return out.Success(result, result.Location)
}

// loadCampus returns the table at path, or the built-in table when path is
// empty.
func loadCampus(path string) (*campus.Table, error) {
	if path == "" {
		return campus.Default()
	}
	return campus.LoadFile(path)
}
