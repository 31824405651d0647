package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/graphml"
	"github.com/persistorai/degrees/internal/output"
)

func newConvertCmd() *cobra.Command {
	var (
		format   string
		filename string
		check    bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file.graphml>",
		Short: "Re-encode a GraphML document in another output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			if err := config.ValidateFilename(filename); err != nil {
				return err
			}

			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if info.Size() > graphml.MaxDocumentSize {
				return fmt.Errorf("read input: %s exceeds %d bytes", args[0], graphml.MaxDocumentSize)
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			g, err := graphml.Decode(src)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if check {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d nodes, %d edges)\n", args[0], g.NodeCount(), g.EdgeCount())
				return nil
			}

			return writeArtifact(cmd.OutOrStdout(), filename, g, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", string(output.FormatText), "Output format: graphml|text|json|yaml")
	cmd.Flags().StringVarP(&filename, "file", "f", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&check, "check", false, "Only validate the document")

	return cmd
}
