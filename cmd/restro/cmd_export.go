package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/restro"
	"github.com/xraph/restro/demo"
	"github.com/xraph/restro/export"
	"github.com/xraph/restro/store/memory"
)

var exportOpts struct {
	from string
	to   string
	out  string
}

// restro export <view>: print a CSV view of the demo dataset.
var exportCmd = &cobra.Command{
	Use:       "export <orders|products|ingredients>",
	Short:     "Export a view of the demo dataset as CSV",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(export.ViewOrders), string(export.ViewProducts), string(export.ViewIngredients)},
	RunE: func(cmd *cobra.Command, args []string) error {
		view, ok := export.ParseView(args[0])
		if !ok {
			return fmt.Errorf("unknown view %q", args[0])
		}

		var rng restro.DateRange
		var err error
		if rng.From, err = parseDate(exportOpts.from); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		if rng.To, err = parseDate(exportOpts.to); err != nil {
			return fmt.Errorf("--to: %w", err)
		}

		ctx := cmd.Context()
		eng := restro.New(memory.New(), restro.WithLogger(newLogger()))
		if err := eng.Start(ctx); err != nil {
			return err
		}
		defer eng.Stop() //nolint:errcheck // memory store

		t, _, err := demo.Provision(ctx, eng, "Restaurante Villa Gourmet")
		if err != nil {
			return err
		}
		sess, err := eng.OpenSession(ctx, t.ID)
		if err != nil {
			return err
		}
		doc, err := sess.Export(ctx, view, rng)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOpts.out != "" {
			f, err := os.Create(exportOpts.out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		_, err = fmt.Fprintln(w, doc.Content)
		return err
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOpts.from, "from", "", "first day of the orders range (YYYY-MM-DD)")
	f.StringVar(&exportOpts.to, "to", "", "last day of the orders range (YYYY-MM-DD)")
	f.StringVarP(&exportOpts.out, "output", "o", "", "write to file instead of stdout")
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
