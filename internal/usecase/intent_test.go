package usecase

import (
	"testing"

	"job-copilot/internal/domain"
)

func TestClassifyIntent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		message string
		want    domain.Intent
	}{
		{"Find me a JOB in data", domain.IntentJobSearch},
		{"find jobs and apply to them", domain.IntentJobSearch},
		{"please write a cover letter", domain.IntentApply},
		{"I want to APPLY", domain.IntentApply},
		{"find something", domain.IntentGeneral},
		{"hello", domain.IntentGeneral},
		{"", domain.IntentGeneral},
	}
	for _, tc := range cases {
		if got := ClassifyIntent(tc.message); got != tc.want {
			t.Fatalf("ClassifyIntent(%q) = %s, want %s", tc.message, got, tc.want)
		}
	}
}

func TestReply(t *testing.T) {
	if got := Reply(domain.IntentJobSearch, 2); got != `I found 2 jobs that match your profile. You can review them below and click "Apply" after giving consent.` {
		t.Fatalf("unexpected reply: %s", got)
	}
	if got := Reply(domain.IntentJobSearch, 0); got != replyNoMatches {
		t.Fatalf("unexpected reply: %s", got)
	}
	if got := Reply(domain.IntentApply, 0); got != replyApply {
		t.Fatalf("unexpected reply: %s", got)
	}
	if got := Reply(domain.IntentGeneral, 3); got != replyGeneral {
		t.Fatalf("unexpected reply: %s", got)
	}
}
