package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/questline/pricing-planner/internal/domain/types"
)

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	var (
		req    types.QuoteRequest
		manual float64
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute regional prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("manual") {
				req.ManualUSD = &manual
			}
			q, err := opts.client().Quote(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), q)
			}
			return printQuote(cmd, q)
		},
	}

	cmd.Flags().StringVarP(&req.Genre, "genre", "g", "indie", "genre id")
	cmd.Flags().Float64Var(&req.Hours, "hours", 0, "hours of content")
	cmd.Flags().Float64VarP(&req.DiscountPercent, "discount", "d", 0, "launch discount percent (0-90)")
	cmd.Flags().Float64Var(&manual, "manual", 0, "manual USD base price")
	cmd.Flags().BoolVarP(&req.AllCountries, "all", "a", false, "price every country")
	cmd.Flags().BoolVar(&req.ReuseRates, "reuse-rates", false, "reuse the planner's current FX snapshot")
	return cmd
}

func printQuote(cmd *cobra.Command, q types.Quote) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Base price: $%s (%s, %s, %gh)\n", q.Base.USD, q.Base.Reason, q.Base.Genre, q.Base.Hours)
	fmt.Fprintf(out, "Discount:   %g%%\n", q.DiscountPercent)
	fmt.Fprintf(out, "FX:         %s (sequence %d)\n\n", q.Fx.Status, q.Fx.Sequence)

	tw := newTable(out)
	fmt.Fprintln(tw, "COUNTRY\tCODE\tCURRENCY\tTIER\tLIST\tSALE")
	for _, r := range q.Rows {
		list, sale := r.Display()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Country, r.CountryCode, r.Currency, r.PPPTier, list, sale)
	}
	return tw.Flush()
}

func newGenresCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List genres and their base prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			genres, err := opts.client().Genres(cmd.Context())
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), genres)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tLABEL\tBASE USD")
			for _, g := range genres {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", g.ID, g.Label, g.BaseUSD)
			}
			return tw.Flush()
		},
	}
}

func newTiersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "List PPP tiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tiers, err := opts.client().Tiers(cmd.Context())
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), tiers)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "TIER\tLABEL\tFACTOR")
			for _, t := range tiers {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Label, t.Factor)
			}
			return tw.Flush()
		},
	}
}

func newFxCmd(opts *rootOptions) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "fx",
		Short: "Show the FX snapshot status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := opts.client()
			fetch := c.Fx
			if refresh {
				fetch = c.RefreshFx
			}
			info, err := fetch(cmd.Context())
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), info)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status:   %s\n", info.Status)
			fmt.Fprintf(out, "sequence: %d\n", info.Sequence)
			fmt.Fprintf(out, "rates:    %d\n", info.Rates)
			if info.FetchedAt != nil {
				fmt.Fprintf(out, "fetched:  %s\n", info.FetchedAt.Format("2006-01-02 15:04:05 MST"))
			}
			if info.Error != "" {
				fmt.Fprintf(out, "error:    %s\n", info.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch fresh rates before reporting")
	return cmd
}
