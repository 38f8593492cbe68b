package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
)

var addCmd = &cobra.Command{
	Use:   "add [path ...]",
	Short: "Add PDF files or folders to the index",
	Long: `Extracts, chunks, embeds and caches the given PDF files.
Directories are searched recursively for *.pdf files.

Files whose content is unchanged since the last run are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if engineService == nil {
		return errors.New("engine service not configured")
	}

	paths, err := collectPDFs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no PDF files found")
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(cmd.OutOrStdout()),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionOnCompletion(func() {
			cmd.Println()
		}),
	)

	ctx := context.Background()
	report := &domain.IngestReport{}
	for _, p := range paths {
		r := engineService.IngestPaths(ctx, []string{p})
		report.Processed += r.Processed
		report.Skipped += r.Skipped
		report.ChunksAdded += r.ChunksAdded
		report.Failures = append(report.Failures, r.Failures...)
		_ = bar.Add(1)
	}

	cmd.Printf("Processed %d file(s), skipped %d, added %d chunk(s).\n",
		report.Processed, report.Skipped, report.ChunksAdded)

	if report.Failed() {
		for _, f := range report.Failures {
			cmd.Printf("  failed: %s: %v\n", f.Path, f.Err)
		}
		return fmt.Errorf("%d file(s) failed", len(report.Failures))
	}

	return nil
}

// collectPDFs expands directory arguments into the PDF files beneath
// them and passes file arguments through. A directory containing no
// PDFs is an error, matching the behaviour for an explicit empty run.
func collectPDFs(args []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		matches, err := findPDFs(arg)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no PDF files in %s", arg)
		}
		paths = append(paths, matches...)
	}

	return paths, nil
}

// findPDFs returns every *.pdf under root, case-insensitively.
func findPDFs(root string) ([]string, error) {
	var matches []string

	err := fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := doublestar.Match("**/*.pdf", strings.ToLower(path))
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, filepath.Join(root, path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}
