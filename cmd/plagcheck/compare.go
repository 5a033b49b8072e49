package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <file-a> <file-b>",
		Short: "Compare two documents",
		Long:  `Report exact shingle Jaccard similarity and the MinHash estimate for two files.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runCompare,
	}
}

func runCompare(cmd *cobra.Command, args []string) error {
	detector, err := detectorFromFlags(cmd)
	if err != nil {
		return err
	}

	textA, err := readText(args[0])
	if err != nil {
		return err
	}
	textB, err := readText(args[1])
	if err != nil {
		return err
	}

	cmp, err := detector.Compare(textA, textB)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd, cmp)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "jaccard:   %.4f\n", cmp.Jaccard)
	fmt.Fprintf(out, "estimate:  %.4f\n", cmp.Estimate)
	fmt.Fprintf(out, "shingles:  %d / %d (%d shared)\n", cmp.ShinglesA, cmp.ShinglesB, cmp.Shared)
	fmt.Fprintf(out, "duplicate: %t\n", cmp.AboveThreshold)
	return nil
}
