package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/store"
)

var statusIncomplete bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what has been loaded",
	Long:  "Displays row counts and completeness for every location/term pair in the destination table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("status"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		summaries, err := st.Summary(ctx, destination())
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if statusIncomplete {
			summaries = incompleteOnly(summaries)
		}
		if len(summaries) == 0 {
			zap.L().Info("nothing loaded yet, run 'search' to start loading results")
			return nil
		}

		formatStatus(cmd.OutOrStdout(), summaries)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusIncomplete, "incomplete", false, "only show location/term pairs that were cut short")
	rootCmd.AddCommand(statusCmd)
}

func incompleteOnly(in []store.LoadSummary) []store.LoadSummary {
	var out []store.LoadSummary
	for _, s := range in {
		if !s.Complete {
			out = append(out, s)
		}
	}
	return out
}

// formatStatus writes a tabular representation of load summaries to out.
func formatStatus(out io.Writer, summaries []store.LoadSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LOCATION\tTERM\tROWS\tCOMPLETE\tLOADED")
	_, _ = fmt.Fprintln(w, "--------\t----\t----\t--------\t------")

	for _, s := range summaries {
		term := s.Term
		if term == "" {
			term = "total"
		}
		loaded := s.LastLoaded
		if loaded == "" {
			loaded = "-"
		}
		complete := "no"
		if s.Complete {
			complete = "yes"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			truncate(s.Location, 48),
			term,
			s.Rows,
			complete,
			loaded,
		)
	}
	_ = w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
