package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/trolley/backend/internal/usecase"
)

var parseCmd = &cobra.Command{
	Use:   "parse <size>",
	Short: "Parse a size into value, unit, category and normalized value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := usecase.Parse(args[0])
		if !ok {
			return printJSON(cmd.OutOrStdout(), nil)
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <size>...",
	Short: "Print the canonical display form of each size",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := make(map[string]string, len(args))
		for _, a := range args {
			out[a] = usecase.Normalize(a)
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var closestCmd = &cobra.Command{
	Use:   "closest <target> <candidate>...",
	Short: "Rank candidate sizes by closeness to a target",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tolerance, _ := cmd.Flags().GetFloat64("tolerance")
		if tolerance == 0 && cfg != nil {
			tolerance = cfg.Matching.AutoMatchTolerance
		}
		return printJSON(cmd.OutOrStdout(), usecase.FindClosestWithTolerance(args[0], args[1:], tolerance))
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <size> <unit>",
	Short: "Restate a size in another unit of the same category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		converted, ok := usecase.ConvertSize(args[0], args[1])
		if !ok {
			return printJSON(cmd.OutOrStdout(), nil)
		}
		return printJSON(cmd.OutOrStdout(), converted)
	},
}

var ppuCmd = &cobra.Command{
	Use:   "ppu <price> <size>",
	Short: "Price per 100ml, per 100g or per item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", args[0], err)
		}

		out := map[string]any{
			"pricePerUnit": nil,
			"unitLabel":    usecase.UnitLabel(args[1]),
		}
		if v, ok := usecase.PricePerUnit(price, args[1]); ok {
			out["pricePerUnit"] = v
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <title>",
	Short: "Pull the size out of a product title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debug := cfg != nil && cfg.Matching.EnableDebugLogging
		extractor := usecase.NewSizeExtractor(debug)

		out := map[string]any{
			"size": nil,
			"name": extractor.StripSize(args[0]),
		}
		if s, ok := extractor.ExtractSize(args[0]); ok {
			out["size"] = s
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	closestCmd.Flags().Float64("tolerance", 0, "auto-match tolerance (default from config)")

	rootCmd.AddCommand(parseCmd, normalizeCmd, closestCmd, convertCmd, ppuCmd, extractCmd)
}
