package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the indexed documents",
		Long:  "Run one retrieval and answer cycle from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewApp(ctx, true)
	if err != nil {
		return err
	}
	defer app.Close()

	question := strings.Join(args, " ")

	result, err := app.QA.Answer(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	fmt.Printf("category: %s\n\n%s\n", result.Category, result.Answer)

	if len(result.Sources) > 0 {
		fmt.Println("\nsources:")
		for _, src := range result.Sources {
			if src.Page > 0 {
				fmt.Printf("  - %s (page %d, relevance %.2f)\n", src.Document, src.Page, src.Relevance)
			} else {
				fmt.Printf("  - %s (relevance %.2f)\n", src.Document, src.Relevance)
			}
		}
	}

	return nil
}
