package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationResult_Steps(t *testing.T) {
	var r MigrationResult

	r.AddStep("professional", 1, nil)
	r.AddStep("skills", 0, errors.New("boom"))
	r.SkipStep("smoke_search")

	assert.Len(t, r.Steps, 3)
	assert.Equal(t, StepOK, r.Steps[0].Status)
	assert.Equal(t, StepFailed, r.Steps[1].Status)
	assert.Equal(t, "boom", r.Steps[1].Error)
	assert.Equal(t, StepSkipped, r.Steps[2].Status)
	assert.Equal(t, []string{"skills"}, r.FailedSteps())
}
