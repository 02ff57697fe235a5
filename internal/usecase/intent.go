package usecase

import (
	"fmt"
	"strings"

	"job-copilot/internal/domain"
)

const (
	replyNoMatches = "I couldn't find strong matches yet. Try refining your target role or location."
	replyApply     = "Select a job from the list and click Apply. I will generate a tailored CV and cover letter and apply only after you confirm."
	replyGeneral   = "I'm your Job Finder Agent. You can ask me to find data science, software engineering, or other roles based on your CV and transcript, and I can help generate tailored CVs and cover letters."
)

// ClassifyIntent maps a chat message to an intent. "find" together with
// "job" wins over any apply wording in the same message.
func ClassifyIntent(message string) domain.Intent {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "find") && strings.Contains(lower, "job"):
		return domain.IntentJobSearch
	case strings.Contains(lower, "apply") || strings.Contains(lower, "cover letter"):
		return domain.IntentApply
	default:
		return domain.IntentGeneral
	}
}

// Reply returns the assistant text for an intent and the number of matched jobs.
func Reply(intent domain.Intent, jobCount int) string {
	switch intent {
	case domain.IntentJobSearch:
		if jobCount > 0 {
			return fmt.Sprintf("I found %d jobs that match your profile. You can review them below and click \"Apply\" after giving consent.", jobCount)
		}
		return replyNoMatches
	case domain.IntentApply:
		return replyApply
	default:
		return replyGeneral
	}
}
