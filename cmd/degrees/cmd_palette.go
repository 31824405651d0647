package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/persistorai/degrees/internal/palette"
)

func newPaletteCmd() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "palette <levels>",
		Short: "Print a colour for each degree 0..levels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("levels must be an integer: %w", err)
			}

			colors, err := palette.Colors(levels, paletteRand(seed))
			if err != nil {
				return err
			}

			for d, c := range colors {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", d, c)
			}

			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default: time based)")

	return cmd
}
