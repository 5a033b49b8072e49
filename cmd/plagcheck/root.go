package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RishiKendai/eduscore/internal/logger"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
	"github.com/RishiKendai/eduscore/internal/preprocess"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "plagcheck",
		Short:         "Near-duplicate detection for text documents",
		Long:          `Compare documents or scan one against a corpus using MinHash signatures and LSH.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logger.InitWithFormat(level, "console")
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	rootCmd.AddCommand(
		NewCompareCmd(),
		NewScanCmd(),
	)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	defaults := plagiarism.DefaultConfig()
	cmd.PersistentFlags().Float64("threshold", defaults.Threshold, "Similarity threshold in (0, 1]")
	cmd.PersistentFlags().Int("num-perm", defaults.NumPerm, "Number of MinHash permutations")
	cmd.PersistentFlags().Int("shingle-length", defaults.ShingleLength, "Words per shingle")
	cmd.PersistentFlags().Int64("seed", defaults.Seed, "Seed for the hash permutations")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("log-level", "warn", "Log level")
}

func detectorFromFlags(cmd *cobra.Command) (*plagiarism.Detector, error) {
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	numPerm, _ := cmd.Flags().GetInt("num-perm")
	shingleLength, _ := cmd.Flags().GetInt("shingle-length")
	seed, _ := cmd.Flags().GetInt64("seed")

	detector, err := plagiarism.New(plagiarism.Config{
		Threshold:     threshold,
		NumPerm:       numPerm,
		ShingleLength: shingleLength,
		Seed:          seed,
	})
	if err != nil {
		return nil, fmt.Errorf("configure detector: %w", err)
	}
	return detector, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return preprocess.CleanText(string(data)), nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
