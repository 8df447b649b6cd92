package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/rag/extract"
	"github.com/spf13/cobra"
)

var ingestTitle string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a PDF or DOCX document",
	Long: `Stores the file, registers it as a document and runs the ingestion in the
foreground. The document id is printed so the status can be checked later.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "display title (defaults to the file name)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}
	path := args[0]
	mimeType := extract.MimeFromFileName(path)
	if !extract.Supported(mimeType) {
		return fmt.Errorf("%s: only .pdf and .docx files can be ingested", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	traceId := utils.GetNewUUID()
	ctx := context.WithValue(commandContext(cmd), config.TRACE_ID_KEY, traceId)

	fileName := filepath.Base(path)
	location, size, err := blobs.Save(ctx, fileName, f)
	if err != nil {
		return fmt.Errorf("storing %s: %w", fileName, err)
	}

	title := strings.TrimSpace(ingestTitle)
	if title == "" {
		title = fileName
	}
	now := time.Now().UTC()
	doc := commonModels.Document{
		Id:        utils.GetNewUUID(),
		Title:     title,
		FileName:  fileName,
		MimeType:  mimeType,
		Size:      size,
		Location:  location,
		Status:    commonModels.DocumentQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := documents.Create(ctx, doc); err != nil {
		return fmt.Errorf("registering document: %w", err)
	}

	cmd.Printf("Ingesting %s as %s\n", fileName, doc.Id)
	result := ragService.IngestDocument(ctx, jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     traceId,
		JobType:     jobModel.JobTypeIngest,
		Status:      jobModel.JobStatusRunning,
		CreatedTime: now,
		JobPayload:  jobModel.JobPayload{DocumentId: doc.Id},
	})

	cmd.Printf("  sections written: %d\n", result.JobPayload.SectionsWritten)
	cmd.Printf("  chunks skipped:   %d\n", result.JobPayload.ChunksSkipped)
	if result.Status == jobModel.JobStatusError {
		return fmt.Errorf("ingestion failed: %s", result.Error.Message)
	}
	cmd.Println("  status:           ready")
	return nil
}
