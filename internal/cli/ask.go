package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docqa/internal/usecase"
)

var (
	askText string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question grounded in the indexed documents",
	Long: `Retrieve the most relevant chunks, build a grounded prompt, and call
the generation backend. The answer comes back with one citation per
retrieved chunk and the end-to-end latency.

Examples:
  docqa ask -q "when do backups run?"
  docqa ask -q "who owns the billing service?" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askText, "query", "q", "", "question to answer (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	retriever, err := newRetriever(cfg.Retrieve.TopK)
	if err != nil {
		return err
	}

	generator, err := newGenerator()
	if err != nil {
		return err
	}

	orchestrator := usecase.NewOrchestrator(retriever, generator)

	answer, err := orchestrator.Answer(cmd.Context(), askText)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, s := range answer.Sources {
			fmt.Printf("  [%d] %s #%d\n", i+1, s.DocName, s.ChunkID)
		}
	}
	fmt.Printf("\n(%d ms)\n", answer.LatencyMS)
	return nil
}
