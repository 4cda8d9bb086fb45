package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forPelevin/shortsplit/internal/domain/segments"
	"github.com/forPelevin/shortsplit/internal/domain/timecode"
	"github.com/forPelevin/shortsplit/internal/pipeline"
	"github.com/forPelevin/shortsplit/internal/types"
)

func newPlanCommand(root *rootOptions) *cobra.Command {
	var (
		duration float64
		segment  int
	)
	cmd := &cobra.Command{
		Use:   "plan [input]",
		Short: "Print the segment windows for an input or a duration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := root.loadSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("segment") {
				settings.Segments.LengthSeconds = segment
			}

			var (
				total   float64
				windows []types.SegmentWindow
			)
			switch {
			case cmd.Flags().Changed("duration"):
				total = duration
				windows, err = segments.Plan(total, settings.Segments.LengthSeconds)
			case len(args) == 1:
				absIn, aerr := filepath.Abs(args[0])
				if aerr != nil {
					return aerr
				}
				cfg, ferr := pipeline.FromSettings(absIn, settings)
				if ferr != nil {
					return ferr
				}
				total, windows, err = pipeline.Plan(cmd.Context(), pipeline.NewVideoTool(cfg), absIn, settings.Segments.LengthSeconds)
			default:
				return errors.New("plan needs an input file or --duration")
			}
			if err != nil {
				return err
			}
			return printPlan(cmd, total, windows)
		},
	}
	cmd.Flags().Float64Var(&duration, "duration", 0, "Media duration in seconds instead of probing an input")
	cmd.Flags().IntVar(&segment, "segment", 0, "Segment length in seconds")
	return cmd
}

func printPlan(cmd *cobra.Command, total float64, windows []types.SegmentWindow) error {
	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		start, err := timecode.FormatSRT(float64(w.Start))
		if err != nil {
			return err
		}
		end, err := timecode.FormatSRT(float64(w.End()))
		if err != nil {
			return err
		}
		rows = append(rows, []string{strconv.Itoa(w.Index + 1), start, end, strconv.Itoa(w.Length)})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable([]string{"#", "Start", "End", "Length (s)"}, rows, 0, 3))
	fmt.Fprintf(out, "%d segments, %.3fs total\n", len(windows), total)
	return nil
}
