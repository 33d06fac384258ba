package admin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloo-solutions/hrdesk/internal/domain"
	"github.com/cloo-solutions/hrdesk/internal/service"
	"github.com/spf13/cobra"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest documents from the local filesystem",
		Long:  "Extract, chunk, embed, and index one or more local files without starting the server",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().String("type", "", "Document type (pdf, word, plain-text); inferred from the extension when empty")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewApp(ctx, true)
	if err != nil {
		return err
	}
	defer app.Close()

	typeFlag, _ := cmd.Flags().GetString("type")

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		docType := domain.DocumentType(typeFlag)
		if docType == "" {
			docType = docTypeForExt(path)
		}
		if !domain.IsValidDocumentType(docType) {
			return fmt.Errorf("cannot determine document type for %s; pass --type", path)
		}

		result, err := app.Ingest.Ingest(ctx, service.IngestInput{
			Data:         data,
			DeclaredType: docType,
			Filename:     filepath.Base(path),
		})
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		fmt.Printf("ingested %s: id=%s status=%s category=%s chunks=%d\n",
			path, result.DocumentID, result.Status, result.Category, result.ChunkCount)
		if result.Note != "" {
			fmt.Printf("  note: %s\n", result.Note)
		}
	}

	return nil
}

func docTypeForExt(path string) domain.DocumentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return domain.DocumentTypePDF
	case ".docx", ".doc":
		return domain.DocumentTypeWord
	case ".txt", ".md", ".text":
		return domain.DocumentTypePlainText
	}
	return ""
}
