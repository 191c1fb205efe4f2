package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Browse the data directory",
	Long:  `List and read the files available for indexing.`,
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List files in the data directory",
	Args:  cobra.NoArgs,
	RunE:  runFilesList,
}

var filesReadCmd = &cobra.Command{
	Use:   "read [filename]",
	Short: "Print a file from the data directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesRead,
}

func init() {
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesReadCmd)
	rootCmd.AddCommand(filesCmd)
}

func runFilesList(cmd *cobra.Command, _ []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	res := fileService.List(cmd.Context())
	if !res.OK() {
		return fmt.Errorf("list files: %w", res.Err())
	}

	if res.Value.Count == 0 {
		cmd.Println("No files found.")
		return nil
	}
	for _, name := range res.Value.Files {
		cmd.Println(name)
	}
	return nil
}

func runFilesRead(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	res := fileService.Read(cmd.Context(), args[0])
	if !res.OK() {
		return res.Err()
	}

	cmd.Print(res.Value.Content)
	return nil
}
