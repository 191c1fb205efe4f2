package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

var (
	indexStdin bool
	indexName  string
)

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Index documents for semantic search",
	Long: `Chunks, embeds and stores documents in the index.

Files are read from the data directory; paths outside it are rejected.
Re-indexing a file replaces its previous chunks.

Use --stdin with --name to index content piped on standard input.`,
	Args: validateIndexArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexStdin, "stdin", false, "read the document from standard input")
	indexCmd.Flags().StringVar(&indexName, "name", "", "filename to index standard input under")
	rootCmd.AddCommand(indexCmd)
}

func validateIndexArgs(_ *cobra.Command, args []string) error {
	if indexStdin {
		if indexName == "" {
			return errors.New("--name is required with --stdin")
		}
		if len(args) > 0 {
			return errors.New("file arguments cannot be combined with --stdin")
		}
		return nil
	}
	if len(args) == 0 {
		return errors.New("requires at least one file (or --stdin)")
	}
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if indexStdin {
		if indexService == nil {
			return errors.New("index service not configured")
		}
		content, err := readStdin(cmd)
		if err != nil {
			return err
		}
		res := indexService.IndexDocument(ctx, indexName, content)
		if !res.OK() {
			return fmt.Errorf("index %s: %w", indexName, res.Err())
		}
		cmd.Println(res.Value.Message)
		return nil
	}

	if fileIndexService == nil {
		return errors.New("file index service not configured")
	}

	failed := 0
	for _, name := range args {
		res := fileIndexService.IndexFile(ctx, name)
		if !res.OK() {
			failed++
			cmd.PrintErrf("%s: %s\n", name, res.Failure.Message)
			continue
		}
		cmd.Println(res.Value.Message)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to index", failed, len(args))
	}
	return nil
}

// readStdin reads standard input up to the configured file size limit.
func readStdin(cmd *cobra.Command) (string, error) {
	maxBytes := int64(domain.DefaultMaxFileBytes)
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return "", fmt.Errorf("failed to get settings: %w", err)
		}
		if settings.Files.MaxBytes > 0 {
			maxBytes = settings.Files.MaxBytes
		}
	}

	content, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if int64(len(content)) > maxBytes {
		return "", fmt.Errorf("index %s: %w", indexName, domain.FailTooLarge[domain.IndexOutcome](maxBytes).Err())
	}
	return string(content), nil
}
