package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/search"
)

var planOpts searchFlags

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the locations a search would visit",
	Long:  "Probes each city, expands large ones by postal code, and reports which locations are already loaded. No result pages are fetched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("plan"); err != nil {
			return err
		}

		cities, terms, err := planOpts.resolve(args)
		if err != nil {
			return err
		}

		env, err := initLoader(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		entries, err := env.Loader.Plan(ctx, cities, terms)
		if err != nil {
			return eris.Wrap(err, "plan")
		}
		return writePlan(cmd.OutOrStdout(), entries)
	},
}

func init() {
	planOpts.register(planCmd)
	rootCmd.AddCommand(planCmd)
}

// writePlan renders entries as a YAML list.
func writePlan(out io.Writer, entries []search.PlanEntry) error {
	if entries == nil {
		entries = []search.PlanEntry{}
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return eris.Wrap(err, "plan: encode")
	}
	return eris.Wrap(enc.Close(), "plan: flush")
}
