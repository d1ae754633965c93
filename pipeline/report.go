package pipeline

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// StageError records a failed stage without aborting the run.
type StageError struct {
	Stage string
	Err   error
}

func (e StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Report summarises one pipeline run.
type Report struct {
	// Written lists every file written, in write order.
	Written []string
	// Skipped lists stages skipped because an optional input was missing.
	Skipped []string
	// Failed lists stages that hit decode, content or write errors.
	Failed []StageError
}

func (r *Report) written(path string) {
	r.Written = append(r.Written, path)
}

func (r *Report) skipped(stage string) {
	r.Skipped = append(r.Skipped, stage)
}

func (r *Report) failed(stage string, err error) {
	r.Failed = append(r.Failed, StageError{Stage: stage, Err: err})
}

// Err returns nil when no stage failed. Skipped stages are not failures.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		msgs[i] = f.Error()
	}
	return errors.Errorf("%d stage(s) failed: %s", len(r.Failed), strings.Join(msgs, "; "))
}
