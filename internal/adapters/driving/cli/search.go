package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docindex/internal/adapters/driving/toolcall"
	"github.com/custodia-labs/docindex/internal/core/domain"
)

// snippetLength is the number of characters of each match shown in table output.
const snippetLength = 200

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Embeds the query and returns the nearest stored chunks, closest first.
Lower distance means a closer match.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", domain.DefaultTopK, "number of results to return")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if indexService == nil {
		return errors.New("index service not configured")
	}

	res := indexService.Search(cmd.Context(), query, searchTopK)
	if !res.OK() {
		return fmt.Errorf("search failed: %w", res.Err())
	}

	if searchJSON {
		return printJSON(cmd, toolcall.Render(res).Body)
	}

	return outputSearchTable(cmd, res.Value)
}

func outputSearchTable(cmd *cobra.Command, outcome domain.SearchOutcome) error {
	if len(outcome.Matches) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, m := range outcome.Matches {
		// Format: [N] filename#chunk (distance)
		cmd.Printf("  [%d] %s#%d (%.4f)\n", i+1, m.Filename, m.ChunkIndex, m.Distance)
		cmd.Printf("      %s\n", snippet(m.Text, snippetLength))
		cmd.Println()
	}
	return nil
}

// snippet flattens whitespace and truncates text to n characters.
func snippet(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "..."
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
