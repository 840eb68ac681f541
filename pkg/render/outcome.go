package render

import "github.com/yumyai/snpview/pkg/model"

// Artifact is one plot or data file produced by the pipeline.
type Artifact struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Status represents the terminal state of one render trigger.
type Status string

const (
	StatusRejected Status = "rejected" // validation failed, pipeline never ran
	StatusRendered Status = "rendered"
	StatusFailed   Status = "failed" // valid query, pipeline error
)

// Source records what kind of user action produced a trigger.
type Source string

const (
	SourceButton Source = "button"
	SourceClick  Source = "click"
)

// Request is the ephemeral value passed from the trigger point into
// the coordinator. Not persisted.
type Request struct {
	Query  model.Query
	Source Source
}

// Outcome is the result of handling one trigger. Reasons is set for
// StatusRejected, Artifacts for StatusRendered, Err for StatusFailed.
type Outcome struct {
	Status    Status     `json:"status"`
	Reasons   []string   `json:"reasons,omitempty"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	Err       error      `json:"-"`
}
