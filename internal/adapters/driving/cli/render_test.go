package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

func TestRenderReconciliation_Sections(t *testing.T) {
	rep := passingReconciliation()
	rep.SampledVectorIDs = true

	buf := new(bytes.Buffer)
	renderReconciliation(buf, NewStyles(nil, true), rep)
	out := buf.String()

	assert.Contains(t, out, "PASSED")
	assert.Contains(t, out, "1024 (expected 1024)")
	assert.Contains(t, out, "sampled")
	assert.Less(t, strings.Index(out, "experiences"), strings.Index(out, "projects"))
}

func TestRenderHarness_Concurrency(t *testing.T) {
	rep := passingHarness()
	rep.Concurrency = &domain.ConcurrencyMetrics{Workers: 5, Queries: 5, Throughput: 12.5}
	rep.BestCategories = []string{"experience"}

	buf := new(bytes.Buffer)
	renderHarness(buf, NewStyles(nil, true), rep)
	out := buf.String()

	assert.Contains(t, out, "12.50 q/s")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "experience")
}

func TestRenderMigration_DryRun(t *testing.T) {
	res := &domain.MigrationResult{
		RunID:   "r",
		DryRun:  true,
		Quality: []string{"exp_002 content is only 12 characters"},
		Failed:  []string{"exp_003"},
	}

	buf := new(bytes.Buffer)
	renderMigration(buf, NewStyles(nil, true), res)
	out := buf.String()

	assert.Contains(t, out, "Migration (dry run)")
	assert.Contains(t, out, "only 12 characters")
	assert.Contains(t, out, "exp_003")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short text", snippet("short   text", 50))

	long := strings.Repeat("word ", 40)
	s := snippet(long, 30)
	assert.True(t, strings.HasSuffix(s, "..."))
	assert.LessOrEqual(t, len([]rune(s)), 33)
}

func TestStylesFor_NonTerminalIsPlain(t *testing.T) {
	st := stylesFor(new(bytes.Buffer))
	assert.Equal(t, "PASSED", st.Pass.Render("PASSED"))
}

func TestNewStyles_Coloured(t *testing.T) {
	st := NewStyles(nil, false)
	assert.NotNil(t, st)
	assert.True(t, st.Title.GetBold())
}
