package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/questline/pricing-planner/pkg/logger"
)

const (
	defaultURL     = "http://localhost:9080"
	defaultTimeout = 15 * time.Second
)

type rootOptions struct {
	url     string
	timeout time.Duration
	asJSON  bool
	verbose bool
}

// NewRootCmd builds the pricectl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "pricectl",
		Short: "Query a running pricing planner",
		Long: `pricectl talks to a running planner over HTTP.

Examples:
  pricectl quote --genre rpg --hours 12 --discount 20
  pricectl quote --genre indie --manual 14.99 --all
  pricectl genres
  pricectl fx`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			return logger.Init(logger.WithFormat(logger.FormatTint),
				logger.WithOutput(cmd.ErrOrStderr()), logger.WithLevel(level))
		},
	}

	root.PersistentFlags().StringVar(&opts.url, "url", defaultURL, "planner base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "request timeout")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print raw JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log outbound requests")

	root.AddCommand(newQuoteCmd(opts), newGenresCmd(opts), newTiersCmd(opts), newFxCmd(opts))
	return root
}

// Execute runs pricectl with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) client() *Client {
	return NewClient(o.url, o.timeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
