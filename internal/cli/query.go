package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docqa/internal/adapter/cache"
	"docqa/internal/usecase"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the index and show ranked chunks",
	Long: `Embed the question and show the nearest chunks with their distances,
without calling the generation backend. Useful for inspecting what an
answer would be grounded on.

Examples:
  docqa query -q "backup schedule"
  docqa query -q "retention policy" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question to search for (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func newRetriever(topK int) (*usecase.Retriever, error) {
	embedder, err := newEmbedder()
	if err != nil {
		return nil, err
	}

	st, err := openLoadedStore(embedder)
	if err != nil {
		return nil, err
	}

	var qc *cache.QueryCache
	if cfg.Retrieve.CacheEnabled {
		qc = cache.NewQueryCache(cfg.Retrieve.CacheSize, 5*time.Minute)
	}

	return usecase.NewRetriever(embedder, st, topK, qc)
}

func runQuery(cmd *cobra.Command, args []string) error {
	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	retriever, err := newRetriever(topK)
	if err != nil {
		return err
	}

	results, err := retriever.Retrieve(cmd.Context(), queryText)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s #%d (distance: %.4f) ---\n", i+1, r.DocName, r.ChunkID, r.Distance)
		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}
	return nil
}
