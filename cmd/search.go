package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/search"
)

// searchFlags are shared by the search and plan commands.
type searchFlags struct {
	cities     []string
	blackOwned bool
	all        bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.cities, "cities", nil, `semicolon-separated cities like "Gary, IN; Akron, OH"`)
	cmd.Flags().BoolVar(&f.blackOwned, "black-owned", false, "search for Black-owned businesses")
	cmd.Flags().BoolVar(&f.all, "all", false, "search for all businesses")
}

// resolve merges --cities with positional args, so an unquoted city list
// split by the shell still parses.
func (f *searchFlags) resolve(args []string) ([]string, []search.Term, error) {
	raw := append(append([]string{}, f.cities...), args...)
	cities := search.SplitCities(raw)
	if len(cities) == 0 {
		return nil, nil, eris.New("at least one city is required (--cities)")
	}

	terms := search.Terms(f.blackOwned, f.all)
	if len(terms) == 0 {
		zap.L().Warn("no search term selected, pass --black-owned and/or --all")
	}
	return cities, terms, nil
}

var searchOpts searchFlags

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search Yelp and append results",
	Long:  "Searches every city for the selected terms and appends any location/term pair not already in the destination table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("search"); err != nil {
			return err
		}

		cities, terms, err := searchOpts.resolve(args)
		if err != nil {
			return err
		}
		if len(terms) == 0 {
			return nil
		}

		env, err := initLoader(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if _, err := env.Loader.Run(ctx, cities, terms); err != nil {
			return eris.Wrap(err, "search")
		}
		return nil
	},
}

func init() {
	searchOpts.register(searchCmd)
	rootCmd.AddCommand(searchCmd)
}
