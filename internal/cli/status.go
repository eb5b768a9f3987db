package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docqa/internal/adapter/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted index and what it was built from",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir := storeDir()

	indexInfo, indexErr := os.Stat(store.IndexPath(dir))
	metaInfo, metaErr := os.Stat(store.MetaPath(dir))
	if indexErr != nil || metaErr != nil {
		fmt.Printf("No index at %s. Run 'docqa ingest' first.\n", dir)
		return nil
	}

	fmt.Printf("Store directory: %s\n", dir)
	fmt.Printf("  %s  %d bytes\n", store.IndexFileName, indexInfo.Size())
	fmt.Printf("  %s  %d bytes\n", store.MetaFileName, metaInfo.Size())

	catalog, err := store.OpenCatalog(store.CatalogPath(dir))
	if err != nil {
		return err
	}
	defer catalog.Close()

	stamp, ok, err := catalog.Stamp()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("\nNo build recorded in catalog.")
		return nil
	}

	fmt.Printf("\nLast build: %s\n", stamp.BuiltAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("  Model:     %s (dimension %d)\n", stamp.Model, stamp.Dimension)
	fmt.Printf("  Documents: %d\n", stamp.Documents)
	fmt.Printf("  Chunks:    %d\n", stamp.Chunks)
	fmt.Printf("  Elapsed:   %d ms\n", stamp.ElapsedMSec)

	docs, err := catalog.Documents()
	if err != nil {
		return err
	}
	if len(docs) > 0 {
		fmt.Println("\nDocuments:")
		for _, doc := range docs {
			fmt.Printf("  %-40s %5d chunks  %8d bytes\n", doc.Name, doc.Chunks, doc.Bytes)
		}
	}
	return nil
}
