package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/search"
)

var zipsCmd = &cobra.Command{
	Use:   `zips "City, ST[; City, ST...]"`,
	Short: "List the postal code locations for cities",
	Long:  "Prints the postal-code locations a large city would be split into, using the configured GeoNames directory.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("zips"); err != nil {
			return err
		}

		source := initZipSource()
		w := newZipsWriter(cmd.OutOrStdout())
		for _, raw := range search.SplitCities(args) {
			city, err := search.ParseCity(raw)
			if err != nil {
				return err
			}
			codes, err := source.PostalCodes(ctx, city.Name, city.State)
			if err != nil {
				return eris.Wrap(err, "zips")
			}
			w.add(raw, codes)
		}
		return w.flush()
	},
}

func init() {
	rootCmd.AddCommand(zipsCmd)
}

type zipsWriter struct {
	w *tabwriter.Writer
}

func newZipsWriter(out io.Writer) *zipsWriter {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CITY\tPOSTAL CODE\tLOCATION")
	_, _ = fmt.Fprintln(w, "----\t-----------\t--------")
	return &zipsWriter{w: w}
}

func (z *zipsWriter) add(city string, codes []string) {
	if len(codes) == 0 {
		_, _ = fmt.Fprintf(z.w, "%s\t-\t-\n", city)
		return
	}
	for _, code := range codes {
		_, _ = fmt.Fprintf(z.w, "%s\t%s\t%s %s\n", city, code, city, code)
	}
}

func (z *zipsWriter) flush() error {
	return z.w.Flush()
}
