package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/fs"
	"docqa/internal/adapter/store"
	"docqa/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [docs-dir]",
	Short: "Build the vector index from a document directory",
	Long: `Segment every document under the directory, embed the chunks, and
persist the index artifacts under the configured store directory. Each run
is a full rebuild.

Examples:
  docqa ingest                  # use documents.dir from config
  docqa ingest /path/to/docs    # index a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := docsDir()
	if len(args) > 0 {
		dir = args[0]
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("documents directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	ch, err := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}

	outDir := storeDir()
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	catalog, err := store.OpenCatalog(store.CatalogPath(outDir))
	if err != nil {
		return err
	}
	defer catalog.Close()

	ingestor := usecase.NewIngestor(ch, embedder, store.NewFlatStore(), catalog, outDir, slog.Default())

	// Document count is unknown up front, so the bar runs as a spinner.
	bar := progressbar.NewOptions(-1,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	ingestor.OnDocument = func(name string, chunks int) {
		bar.Describe(fmt.Sprintf("[cyan]Embedding[reset] %s", name))
		bar.Add(1)
	}

	fmt.Printf("Ingesting %s (model: %s)...\n", dir, embedder.ModelName())

	result, err := ingestor.Ingest(cmd.Context(), fs.NewDirSource(dir, cfg.Documents.Includes, cfg.Documents.Excludes))
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	bar.Finish()

	if result.NoOp {
		fmt.Println("No non-empty documents found; existing index left untouched.")
		return nil
	}

	fmt.Printf("\nIngest complete:\n")
	fmt.Printf("  Documents: %d (%d skipped as empty)\n", result.Documents, result.Skipped)
	fmt.Printf("  Chunks:    %d\n", result.Chunks)
	fmt.Printf("  Dimension: %d\n", result.Dimension)
	fmt.Printf("  Elapsed:   %s\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("\nIndex stored at: %s\n", outDir)
	return nil
}
