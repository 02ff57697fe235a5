package main

import (
	"errors"

	"job-copilot/internal/model"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Submit a simulated application after confirming consent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		yes, _ := cmd.Flags().GetBool("yes")

		consent := yes
		if !consent {
			prompt := promptui.Select{
				Label: "Allow the copilot to apply to " + args[0] + " on your behalf?",
				Items: []string{PromptYes, PromptNo},
			}
			_, choice, err := prompt.Run()
			if errors.Is(err, promptui.ErrInterrupt) {
				return nil
			}
			if err != nil {
				return err
			}
			consent = choice == PromptYes
		}

		res, err := newClient().Apply(cmd.Context(), model.ApplyRequest{
			JobID:          args[0],
			Provider:       provider,
			UserID:         v.GetString("user"),
			AllowAutoApply: consent,
		})
		if err != nil {
			return err
		}
		printf(cmd, "%s (%s via %s)\n", res.Message, res.Submission.JobID, res.Submission.HostLabel)
		return nil
	},
}

func init() {
	applyCmd.Flags().String("provider", "", "job board name (default: the listing's provider)")
	applyCmd.Flags().BoolP("yes", "y", false, "consent without asking")
}
