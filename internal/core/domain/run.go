package domain

import "time"

const (
	// DefaultBatchSize is the number of vectors upserted per request.
	DefaultBatchSize = 20

	// DefaultBatchPause is the fixed pause between vector batches.
	DefaultBatchPause = 500 * time.Millisecond

	// SmokeQuery is the post-write query used to confirm the vector store answers.
	SmokeQuery = "What experience do you have with Java and Spring Boot?"

	// SmokeTopK is the number of results requested by the smoke query.
	SmokeTopK = 3
)

// MigrationOptions configures a single migration run.
type MigrationOptions struct {
	// BatchSize is the number of vectors per upsert. Zero uses DefaultBatchSize.
	BatchSize int

	// BatchPause is the pause between batches. Zero uses DefaultBatchPause;
	// a negative value disables pacing.
	BatchPause time.Duration

	// DryRun reports what would be written without touching either store.
	DryRun bool

	// Reset drops and recreates the relational tables first.
	Reset bool

	// Smoke runs a post-write search against the vector store.
	Smoke bool
}

// StepStatus is the outcome of one migration step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult records one step of a migration.
type StepResult struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Rows   int        `json:"rows"`
	Error  string     `json:"error,omitempty"`
}

// MigrationResult is returned by a migration run. It is built up by the
// run itself and never shared between runs.
type MigrationResult struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	DryRun    bool          `json:"dry_run"`
	Steps     []StepResult  `json:"steps"`
	Extracted int           `json:"extracted"`
	Committed []string      `json:"committed"`
	Failed    []string      `json:"failed"`
	Indexed   []string      `json:"indexed"`
	Batches   int           `json:"batches"`
	Quality   []string      `json:"quality_issues,omitempty"`
}

// AddStep appends a step outcome; err may be nil.
func (r *MigrationResult) AddStep(name string, rows int, err error) {
	step := StepResult{Name: name, Status: StepOK, Rows: rows}
	if err != nil {
		step.Status = StepFailed
		step.Error = err.Error()
	}
	r.Steps = append(r.Steps, step)
}

// SkipStep appends a skipped step.
func (r *MigrationResult) SkipStep(name string) {
	r.Steps = append(r.Steps, StepResult{Name: name, Status: StepSkipped})
}

// FailedSteps returns the names of failed steps.
func (r *MigrationResult) FailedSteps() []string {
	var names []string
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			names = append(names, s.Name)
		}
	}
	return names
}
