package usecase

import (
	"context"
	"fmt"

	"job-copilot/internal/domain"
)

// flowState is the position of one chat run in the orchestration state machine.
type flowState int

const (
	stateStart flowState = iota
	stateProfileReady
	stateIntentClassified
	stateJobsSearched
	stateDocsGenerated
	stateDone
)

func (s flowState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateProfileReady:
		return "profile_ready"
	case stateIntentClassified:
		return "intent_classified"
	case stateJobsSearched:
		return "jobs_searched"
	case stateDocsGenerated:
		return "docs_generated"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// flow carries everything a run accumulates while moving through the stages.
type flow struct {
	req     ChatRequest
	state   flowState
	profile domain.StructuredProfile
	source  ProfileSource
	intent  domain.Intent
	jobs    []domain.Job
	docs    *domain.GeneratedDocs
}

// ProfileTaskOutput is recorded for the profile_extraction task.
type ProfileTaskOutput struct {
	Profile domain.StructuredProfile `json:"profile"`
	Source  ProfileSource            `json:"source"`
}

// JobSearchTaskOutput is recorded for the job_search task.
type JobSearchTaskOutput struct {
	Jobs []domain.Job `json:"jobs"`
}

// DocumentTaskOutput is recorded for the document_generation task.
type DocumentTaskOutput struct {
	JobID string               `json:"job_id"`
	Docs  domain.GeneratedDocs `json:"docs"`
}

// stage is one step of the pipeline. Run returns the task output to record;
// a stage with a zero task type is not recorded.
type stage struct {
	name    string
	task    domain.TaskType
	from    flowState
	to      flowState
	enabled func(f *flow) bool
	run     func(ctx context.Context, f *flow) (interface{}, error)
}

func (o *Orchestrator) stages() []stage {
	return []stage{
		{
			name: "profile",
			task: domain.TaskProfileExtraction,
			from: stateStart,
			to:   stateProfileReady,
			run:  o.stageProfile,
		},
		{
			name: "intent",
			from: stateProfileReady,
			to:   stateIntentClassified,
			run: func(_ context.Context, f *flow) (interface{}, error) {
				f.intent = ClassifyIntent(f.req.Message)
				return nil, nil
			},
		},
		{
			name: "job_search",
			task: domain.TaskJobSearch,
			from: stateIntentClassified,
			to:   stateJobsSearched,
			enabled: func(f *flow) bool {
				return f.intent == domain.IntentJobSearch
			},
			run: func(_ context.Context, f *flow) (interface{}, error) {
				f.jobs = o.matcher.Match(&f.profile, f.req.Message)
				return JobSearchTaskOutput{Jobs: f.jobs}, nil
			},
		},
		{
			name: "documents",
			task: domain.TaskDocumentGeneration,
			from: stateJobsSearched,
			to:   stateDocsGenerated,
			enabled: func(f *flow) bool {
				return o.eagerPreview && len(f.jobs) > 0
			},
			run: func(_ context.Context, f *flow) (interface{}, error) {
				top := f.jobs[0]
				docs, err := GenerateDocs(&f.profile, &top)
				if err != nil {
					return nil, err
				}
				f.docs = &docs
				return DocumentTaskOutput{JobID: top.ID, Docs: docs}, nil
			},
		},
	}
}

func (o *Orchestrator) stageProfile(ctx context.Context, f *flow) (interface{}, error) {
	if f.req.ProfileHint != nil {
		f.profile = *f.req.ProfileHint
		f.source = SourceHint
	} else {
		sp, src, err := o.profiles.Resolve(ctx, f.req.UserID)
		if err != nil {
			return nil, err
		}
		f.profile = sp
		f.source = src
	}
	return ProfileTaskOutput{Profile: f.profile, Source: f.source}, nil
}
