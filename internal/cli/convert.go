package cli

import (
	"fmt"
	"strconv"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/spf13/cobra"
)

func newConvertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "convert <amount> <from> <to>",
		Short:   "Convert an amount between currencies",
		Example: "  feescope convert 100 USD NGN",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			a, ctx, done, err := opts.build(cmd)
			if err != nil {
				return err
			}
			defer done()
			conv, err := a.ExchangeService.Convert(ctx, currency.Normalize(args[1]), currency.Normalize(args[2]), amount)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, conv)
			}
			valueColor.Fprintln(out, conv.Display)
			mutedColor.Fprintf(out, "1 %s = %v %s (%s, %s)\n", conv.From, conv.Rate, conv.To, conv.Source, conv.Date)
			return nil
		},
	}
}
