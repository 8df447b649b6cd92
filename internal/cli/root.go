// Package cli is the docqa operator command line.
package cli

import (
	"context"
	"errors"

	"github.com/akolanti/DocQA/internal/app"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/blobStore"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/spf13/cobra"
)

// set by PersistentPreRunE, or directly by tests
var (
	ragService rag.Service
	documents  commonModels.DocumentStore
	blobs      blobStore.BlobStore
	components *app.Components
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ingest documents and ask questions about them",
	Long: `docqa runs the ingestion and question answering pipeline directly against
the backends configured for the API (.env, DOCQA_CONFIG and the environment).`,
	SilenceUsage:       true,
	PersistentPreRunE:  connect,
	PersistentPostRunE: disconnect,
}

func Execute() error {
	return rootCmd.Execute()
}

func connect(cmd *cobra.Command, _ []string) error {
	if ragService != nil {
		return nil
	}
	settings, err := config.Load()
	if err != nil {
		return err
	}
	logger_i.InitTo(cmd.ErrOrStderr(), settings.IsProd, settings.LogLevel)

	// in-memory stores would lose the document as soon as the command exits
	settings.FallbackToMemory = false
	c, err := app.Build(cmd.Context(), settings)
	if err != nil {
		return err
	}
	components = c
	ragService, documents, blobs = c.RAG, c.Documents, c.Blobs
	return nil
}

func disconnect(*cobra.Command, []string) error {
	if components == nil {
		return nil
	}
	err := components.Close()
	components = nil
	return err
}

func requireServices() error {
	if ragService == nil || documents == nil {
		return errors.New("docqa services are not configured")
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
