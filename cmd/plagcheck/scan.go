package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Check a document against a corpus directory",
		Long: `Index every file under --corpus and report corpus documents similar to <file>.
Corpus documents are identified by their path relative to the corpus directory.
If <file> itself lives in the corpus it is excluded from its own matches.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}
	cmd.Flags().String("corpus", "", "Directory of corpus documents")
	cmd.Flags().StringSlice("ext", []string{".txt", ".md"}, "File extensions to index")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	detector, err := detectorFromFlags(cmd)
	if err != nil {
		return err
	}

	corpusDir, _ := cmd.Flags().GetString("corpus")
	exts, _ := cmd.Flags().GetStringSlice("ext")

	indexed, err := indexCorpus(detector, corpusDir, exts)
	if err != nil {
		return err
	}

	text, err := readText(args[0])
	if err != nil {
		return err
	}

	report, err := detector.Check(text, corpusID(corpusDir, args[0]))
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "indexed:    %d documents\n", indexed)
	fmt.Fprintf(out, "similarity: %.2f%% (%s)\n", report.Percentage, report.SuspicionLevel)
	for _, m := range report.Matches {
		fmt.Fprintf(out, "  %6.2f%%  %s\n", m.Similarity, m.DocID)
	}
	return nil
}

func indexCorpus(detector *plagiarism.Detector, dir string, exts []string) (int, error) {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		text, err := readText(path)
		if err != nil {
			return err
		}
		return detector.AddDocument(corpusID(dir, path), text)
	})
	if err != nil {
		return 0, fmt.Errorf("index corpus: %w", err)
	}
	if detector.Len() == 0 {
		return 0, errors.New("index corpus: no documents with enough words found")
	}
	return detector.Len(), nil
}

// corpusID names a file by its slash-separated path relative to the corpus.
// Files outside the corpus get an empty id.
func corpusID(dir, path string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}
