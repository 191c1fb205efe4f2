package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docindex/internal/adapters/driving/toolcall"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	res := indexService.ListIndexedDocuments(cmd.Context())
	if !res.OK() {
		return fmt.Errorf("list failed: %w", res.Err())
	}

	if listJSON {
		return printJSON(cmd, toolcall.Render(res).Body)
	}

	if len(res.Value.Documents) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	cmd.Printf("Indexed documents (%d chunks):\n", res.Value.TotalChunks)
	for _, name := range res.Value.Documents {
		cmd.Printf("  %s\n", name)
	}
	return nil
}
