package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/persistorai/degrees/client"
	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/output"
)

var apiClient *client.Client

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Talk to a degrees server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveRemote(); err != nil {
				return err
			}

			var opts []client.Option
			if flagKey != "" {
				opts = append(opts, client.WithAPIKey(flagKey))
			}
			apiClient = client.New(flagURL, opts...)

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "degrees server URL (env: DEGREES_URL)")
	cmd.PersistentFlags().StringVar(&flagKey, "api-key", "", "Server API key (env: DEGREES_SERVER_API_KEY)")

	cmd.AddCommand(newRemoteHealthCmd())
	cmd.AddCommand(newRemoteCrawlCmd())
	cmd.AddCommand(newRemoteValidateCmd())

	return cmd
}

func newRemoteHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := apiClient.Health(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), h)
		},
	}
}

func newRemoteCrawlCmd() *cobra.Command {
	var (
		req      client.CrawlRequest
		filename string
		summary  bool
		stream   bool
	)

	cmd := &cobra.Command{
		Use:   "crawl <reference>",
		Short: "Run a crawl on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Reference = args[0]
			ctx := cmd.Context()

			if err := config.ValidateFilename(filename); err != nil {
				return err
			}

			switch {
			case stream:
				s, err := apiClient.Crawls.Stream(ctx, req, func(ev client.Event) error {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\t%s\n", ev.Type, ev.Data)
					return nil
				})
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), s)
			case summary:
				s, err := apiClient.Crawls.Summary(ctx, req)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), s)
			}

			art, err := apiClient.Crawls.Artifact(ctx, req)
			if err != nil {
				return err
			}

			if art.Warnings > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d references could not be resolved\n", art.Warnings)
			}

			return writeBytes(cmd.OutOrStdout(), filename, art.Body)
		},
	}

	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "Display name of the seed")
	cmd.Flags().IntVarP(&req.Degree, "degree", "d", 1, "Maximum degree of separation")
	cmd.Flags().StringVarP(&req.Format, "format", "o", string(output.FormatGraphML), "Output format: graphml|text|json|yaml")
	cmd.Flags().StringVarP(&filename, "file", "f", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print only the crawl summary")
	cmd.Flags().BoolVar(&stream, "stream", false, "Stream crawl events to stderr and print the summary")

	return cmd
}

func newRemoteValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.graphml>",
		Short: "Validate a GraphML document on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			res, err := apiClient.GraphML.Validate(cmd.Context(), doc)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeBytes(stdout io.Writer, path string, body []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(body)
		return err
	}

	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
