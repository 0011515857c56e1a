package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/fee"
	"github.com/amirasaad/feescope/pkg/service/estimate"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	valueColor   = color.New(color.FgGreen, color.Bold)
	partialColor = color.New(color.FgYellow)
	mutedColor   = color.New(color.Faint)
)

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <fee>",
		Short: "Show how a fee string is read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := fee.Parse(args[0])
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, rule)
			}
			fmt.Fprintln(out, fee.Describe(rule))
			if !rule.IsFree && !rule.Matched {
				partialColor.Fprintln(out, "no amount recognised")
			}
			return nil
		},
	}
}

func newEvaluateCmd(opts *options) *cobra.Command {
	var (
		amount float64
		target string
	)
	cmd := &cobra.Command{
		Use:   "evaluate <fee>",
		Short: "Compute a fee string for an amount",
		Example: `  feescope evaluate "1.5% ($1 – $5)" --amount 250 --currency USD
  feescope evaluate '$5' --amount 10000 --currency NGN --offline`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, done, err := opts.build(cmd)
			if err != nil {
				return err
			}
			defer done()
			ev, err := a.EstimateService.Evaluate(ctx, args[0], amount, currency.Normalize(target))
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), ev)
			}
			printEvaluation(cmd.OutOrStdout(), ev)
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "Transaction amount")
	cmd.Flags().StringVar(&target, "currency", currency.DefaultCode.String(), "Currency of the amount")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newEstimateCmd(opts *options) *cobra.Command {
	var req estimate.Request
	var target string
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Look a service up in the fee schedule and compute its fee",
		Example: `  feescope estimate --section Payout --service "NGN Payout - Instant" --amount 5000 --currency NGN`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, done, err := opts.build(cmd)
			if err != nil {
				return err
			}
			defer done()
			req.Currency = currency.Normalize(target)
			est, err := a.EstimateService.Estimate(ctx, req)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), est)
			}
			out := cmd.OutOrStdout()
			mutedColor.Fprintf(out, "%s / %s / %s\n", est.UserType, est.Section, est.Entry.Service)
			printEvaluation(out, &est.Evaluation)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.UserType, "user-type", "individual", "individual or business")
	cmd.Flags().StringVar(&req.Section, "section", "", "Schedule section")
	cmd.Flags().StringVar(&req.Service, "service", "", "Service name within the section")
	cmd.Flags().Float64Var(&req.Amount, "amount", 0, "Transaction amount")
	cmd.Flags().StringVar(&target, "currency", currency.DefaultCode.String(), "Currency of the amount")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}

func newScheduleCmd(opts *options) *cobra.Command {
	var userType string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "List the fee schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, done, err := opts.build(cmd)
			if err != nil {
				return err
			}
			defer done()
			sections, err := a.EstimateService.Schedule(ctx, userType)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), sections)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range sections {
				fmt.Fprintf(w, "%s\n", strings.ToUpper(s.Name))
				for _, it := range s.Items {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", it.Service, it.Label, it.Summary)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&userType, "user-type", "individual", "individual or business")
	return cmd
}

func printEvaluation(out io.Writer, ev *estimate.Evaluation) {
	fmt.Fprintf(out, "%s on %v %s\n", ev.Fee, ev.Amount, ev.Currency)
	if v, ok := ev.Result.Value(); ok {
		valueColor.Fprintf(out, "%s%.2f", currency.Symbol(ev.Currency), v)
		fmt.Fprintln(out)
	} else {
		partialColor.Fprintln(out, "not computable")
	}
	mutedColor.Fprintln(out, ev.Result.Display)
	for _, issue := range ev.Issues {
		partialColor.Fprintln(out, "! "+issue)
	}
	if ev.RatesAsOf != nil {
		mutedColor.Fprintf(out, "rates: %s as of %s\n", ev.RatesSource, ev.RatesAsOf.Format("2006-01-02 15:04"))
	}
}
