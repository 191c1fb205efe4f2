package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docindex/internal/adapters/driving/toolcall"
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run a read-only SQL query",
	Long: `Runs a SELECT statement against the configured SQLite database and
prints the rows as JSON. The database is opened read-only and statements
that modify data are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	res := queryService.Query(cmd.Context(), args[0])
	if !res.OK() {
		return fmt.Errorf("query failed: %w", res.Err())
	}

	return printJSON(cmd, toolcall.Render(res).Body)
}
