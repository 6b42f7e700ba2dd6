package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the destination table",
	Long:  "Creates the destination schema, table and location/term index if they do not exist. Search creates them on first append as well.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		dest := destination()
		if err := st.Migrate(ctx, dest); err != nil {
			return eris.Wrap(err, "migrate")
		}

		zap.L().Info("destination ready", zap.Stringer("dest", dest), zap.String("driver", cfg.Store.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
