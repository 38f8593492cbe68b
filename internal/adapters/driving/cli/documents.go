package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List cached documents",
	RunE:  runDocumentsList,
}

var documentsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show document and chunk counts",
	RunE:  runDocumentsCount,
}

func init() {
	documentsCmd.AddCommand(documentsCountCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	docs, err := documentStore.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents cached.")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("%s  %d chunk(s)  processed %s\n",
			d.Path, len(d.Chunks), d.ProcessedAt.Local().Format("2006-01-02 15:04"))
	}
	cmd.Printf("\n%d document(s) total.\n", len(docs))

	return nil
}

func runDocumentsCount(cmd *cobra.Command, _ []string) error {
	if engineService == nil {
		return errors.New("engine service not configured")
	}

	n, err := engineService.DocumentCount(context.Background())
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}

	cmd.Printf("%d document(s), %d indexed chunk(s).\n", n, engineService.ChunkCount())
	return nil
}
