package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/walletscan/enrich"
)

func newExtractCmd(a *app) *cobra.Command {
	var metricName, file, pageURL string
	var dump bool
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run the metric extractors over a saved HTML page, without a browser.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := enrich.ParseMetricKind(metricName)
			if !ok {
				return fmt.Errorf("walletscan: unknown metric %q (want activities or pnl)", metricName)
			}
			doc, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("walletscan: read page: %w", err)
			}
			if pageURL == "" {
				pageURL = enrich.SourceURL(enrich.DefaultConfig(), kind, "offline")
			}

			if dump {
				md, err := enrich.PageMarkdown(pageURL, doc)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, md)
				return nil
			}

			res, err := enrich.ExtractHTML(cmd.Context(), kind, pageURL, doc)
			if res.Challenge != "" {
				a.logger().Warn("walletscan: page looks like a verification challenge", "reason", res.Challenge)
			}
			if err != nil {
				return err
			}
			a.logger().Info("walletscan: extracted", "metric", kind.String(), "strategy", res.Strategy)
			fmt.Fprintln(a.out, res.Value)
			return nil
		},
	}
	cmd.Flags().StringVar(&metricName, "metric", "activities", "metric to extract: activities or pnl")
	cmd.Flags().StringVar(&file, "file", "", "saved HTML page")
	cmd.Flags().StringVar(&pageURL, "url", "", "URL the page was saved from (default: the configured source URL)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the page as markdown instead of extracting")
	cmd.MarkFlagRequired("file")
	return cmd
}
