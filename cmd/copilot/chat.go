package main

import (
	"errors"
	"strings"
	"time"

	"job-copilot/internal/adapter/client"
	"job-copilot/internal/domain"
	"job-copilot/internal/model"
	"job-copilot/internal/usecase"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message; without arguments starts an interactive session",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer logger.Sync()

		sync, _ := cmd.Flags().GetBool("sync")
		lang, _ := cmd.Flags().GetString("language")
		interval, _ := cmd.Flags().GetDuration("poll-interval")
		attempts, _ := cmd.Flags().GetInt("poll-attempts")

		s := &chatSession{
			cmd:    cmd,
			client: newClient(),
			user:   v.GetString("user"),
			lang:   lang,
			sync:   sync,
			poll:   usecase.PollConfig{Interval: interval, MaxAttempts: attempts},
			logger: logger,
		}

		if len(args) > 0 {
			return s.send(strings.Join(args, " "))
		}
		return s.interactive()
	},
}

func init() {
	def := usecase.DefaultPollConfig()
	chatCmd.Flags().Bool("sync", false, "use the synchronous chat endpoint instead of a workflow")
	chatCmd.Flags().String("language", "en", "reply language")
	chatCmd.Flags().Duration("poll-interval", def.Interval, "delay between status polls")
	chatCmd.Flags().Int("poll-attempts", def.MaxAttempts, "status polls before giving up")
}

type chatSession struct {
	cmd    *cobra.Command
	client *client.Client
	user   string
	lang   string
	sync   bool
	poll   usecase.PollConfig
	logger *zap.Logger
}

func (s *chatSession) interactive() error {
	prompt := promptui.Prompt{Label: "You"}
	for {
		msg, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(msg) == "" {
			continue
		}
		if err := s.send(msg); err != nil {
			// keep the session alive on per-message failures
			printf(s.cmd, "error: %v\n", err)
		}
	}
}

func (s *chatSession) send(msg string) error {
	ctx := s.cmd.Context()
	if s.sync {
		res, err := s.client.Chat(ctx, model.ChatRequest{Message: msg, Language: s.lang, UserID: s.user})
		if err != nil {
			return err
		}
		printResult(s.cmd, res.Reply, res.Jobs, res.GeneratedDocs)
		return nil
	}

	start, err := s.client.StartWorkflow(ctx, model.StartRequest{
		UserInput: msg,
		UserData:  model.UserData{Language: s.lang, UserID: s.user},
	})
	if err != nil {
		return err
	}
	s.logger.Debug("workflow started",
		zap.String("workflow_id", start.WorkflowID),
		zap.Any("planned_tasks", start.PlannedTasks),
	)

	began := time.Now()
	w, err := s.client.WaitWorkflow(ctx, start.WorkflowID, s.poll)
	if err != nil {
		return err
	}
	s.logger.Debug("workflow finished",
		zap.String("workflow_id", w.ID),
		zap.Int("tasks", len(w.Tasks)),
		zap.Duration("waited", time.Since(began)),
	)
	printResult(s.cmd, w.Result.Reply, w.Result.Jobs, w.Result.GeneratedDocs)
	return nil
}

func printResult(cmd *cobra.Command, reply string, jobs []domain.Job, docs *domain.GeneratedDocs) {
	printf(cmd, "Copilot: %s\n", reply)
	for _, j := range jobs {
		printf(cmd, "  [%s] %s @ %s (%s) score %.1f\n", j.ID, j.Title, j.Company, j.Location, j.MatchScore)
	}
	if docs != nil {
		printf(cmd, "\n--- CV ---%s\n--- Cover letter ---%s\n", docs.CV, docs.CoverLetter)
	}
}
