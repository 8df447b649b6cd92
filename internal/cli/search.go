package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/spf13/cobra"
)

const snippetLength = 160

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Show the document sections closest to a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}
	matches, err := ragService.Search(commandContext(cmd), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if searchLimit > 0 && len(matches) > searchLimit {
		matches = matches[:searchLimit]
	}

	if searchJSON {
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	outputSearchTable(cmd, matches)
	return nil
}

func outputSearchTable(cmd *cobra.Command, matches []commonModels.QueryMatch) {
	if len(matches) == 0 {
		cmd.Println("No results found.")
		return
	}
	for i, m := range matches {
		cmd.Printf("  [%d] %s#%d (%.3f)\n", i+1, m.DocumentId, m.SectionOrder, m.Similarity)
		cmd.Printf("      %s\n", snippet(m.Content))
	}
}

func snippet(content string) string {
	runes := []rune(strings.Join(strings.Fields(content), " "))
	if len(runes) <= snippetLength {
		return string(runes)
	}
	return string(runes[:snippetLength]) + "..."
}
