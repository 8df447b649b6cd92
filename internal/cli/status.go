package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [document-id]",
	Short: "Print the ingestion status of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}
	doc, err := documents.Get(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	cmd.Printf("%s  %s\n", doc.Id, doc.Title)
	cmd.Printf("  status:  %s\n", doc.Status)
	if doc.ErrorMessage != "" {
		cmd.Printf("  error:   %s\n", doc.ErrorMessage)
	}
	cmd.Printf("  file:    %s (%s, %d bytes)\n", doc.FileName, doc.MimeType, doc.Size)
	return nil
}
