package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the ingested documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question must not be empty")
	}

	traceId := utils.GetNewUUID()
	ctx := context.WithValue(commandContext(cmd), config.TRACE_ID_KEY, traceId)
	result := ragService.Ask(ctx, jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     traceId,
		JobType:     jobModel.JobTypeQuery,
		Status:      jobModel.JobStatusRunning,
		CreatedTime: time.Now(),
		JobPayload:  jobModel.JobPayload{Question: question},
	})
	if result.Status == jobModel.JobStatusError {
		return errors.New(result.Error.Message)
	}

	cmd.Println(result.JobPayload.Answer)
	if len(result.JobPayload.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, s := range result.JobPayload.Sources {
			cmd.Printf("  - %s\n", s)
		}
	}
	return nil
}
