package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
)

// Ensure Store satisfies the relational port through the embedded store.
var _ driven.RelationalStore = (*Store)(nil)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func testInfo() domain.PersonalInfo {
	return domain.PersonalInfo{
		Name:    "Ada Example",
		Title:   "Engineer",
		Contact: domain.Contact{Email: "ada@example.com", GitHub: "ada"},
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", store.Dialect())
}

func TestNewStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveChunk(ctx, domain.ContentChunk{ID: "a", Content: "x", Type: domain.ChunkTypeSkills}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	ids, err := reopened.ListChunkIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestStore_MigrationsRecorded(t *testing.T) {
	store := setupTestStore(t)

	var version int
	err := store.DB().QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	// Applying again is a no-op.
	require.NoError(t, store.EnsureSchema(context.Background(), false))
	var count int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStore_Ping(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

// ==================== Profile Store Tests ====================

func TestSaveProfessional_UpsertsByEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id1, err := store.SaveProfessional(ctx, testInfo())
	require.NoError(t, err)

	updated := testInfo()
	updated.Title = "Staff Engineer"
	id2, err := store.SaveProfessional(ctx, updated)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	n, err := store.CountRows(ctx, "professionals")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var title string
	require.NoError(t, store.DB().QueryRow("SELECT title FROM professionals WHERE id = ?", id1).Scan(&title))
	assert.Equal(t, "Staff Engineer", title)
}

func TestSaveProfessional_UpsertsByNameWithoutEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	info := domain.PersonalInfo{Name: "No Email"}
	id1, err := store.SaveProfessional(ctx, info)
	require.NoError(t, err)
	id2, err := store.SaveProfessional(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	other, err := store.SaveProfessional(ctx, domain.PersonalInfo{Name: "Someone Else"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, other)
}

func TestSaveSections_ReplaceRows(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	pid, err := store.SaveProfessional(ctx, testInfo())
	require.NoError(t, err)

	entries := []domain.ExperienceEntry{
		{Company: "Acme", Position: "Engineer", Technologies: []string{"Go"}},
		{Company: "Globex", Position: "Developer"},
	}
	n, err := store.SaveExperiences(ctx, pid, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A second migration of the same profile does not duplicate rows.
	n, err = store.SaveExperiences(ctx, pid, entries[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	count, err := store.CountRows(ctx, "experiences")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var technologies string
	require.NoError(t, store.DB().QueryRow("SELECT technologies FROM experiences").Scan(&technologies))
	assert.JSONEq(t, `["Go"]`, technologies)
}

func TestSaveSkills_TechnicalAndSoft(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	pid, err := store.SaveProfessional(ctx, testInfo())
	require.NoError(t, err)

	n, err := store.SaveSkills(ctx, pid, domain.SkillSet{
		Technical: []domain.SkillCategory{
			{Category: "languages", Skills: []domain.Skill{{Name: "Go", Proficiency: "expert"}, {Name: "Java"}}},
		},
		SoftSkills: []domain.SoftSkill{{Skill: "Mentoring", Context: "Led juniors"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var category, skillType string
	err = store.DB().QueryRow("SELECT category, skill_type FROM skills WHERE skill_name = 'Mentoring'").
		Scan(&category, &skillType)
	require.NoError(t, err)
	assert.Equal(t, "soft_skills", category)
	assert.Equal(t, "soft", skillType)
}

func TestSaveEducation_GraduationYear(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	pid, err := store.SaveProfessional(ctx, testInfo())
	require.NoError(t, err)

	_, err = store.SaveEducation(ctx, pid, []domain.EducationEntry{
		{Institution: "Numeric U", Graduation: "2016"},
		{Institution: "Text U", Graduation: "Expected May 2026"},
	})
	require.NoError(t, err)

	var year *int64
	require.NoError(t, store.DB().QueryRow(
		"SELECT graduation_year FROM education WHERE institution = 'Numeric U'").Scan(&year))
	require.NotNil(t, year)
	assert.Equal(t, int64(2016), *year)

	require.NoError(t, store.DB().QueryRow(
		"SELECT graduation_year FROM education WHERE institution = 'Text U'").Scan(&year))
	assert.Nil(t, year)
}

func TestSaveProjectsAndDocument(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	pid, err := store.SaveProfessional(ctx, testInfo())
	require.NoError(t, err)

	n, err := store.SaveProjects(ctx, pid, []domain.ProjectEntry{
		{Name: "Widget App", Role: "Lead", Links: domain.ProjectLinks{Repository: "https://example.com/widget"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.SaveDocument(ctx, pid, []byte(`{"personalInfo":{}}`), "1.0"))
	require.NoError(t, store.SaveDocument(ctx, pid, []byte(`{"personalInfo":{"name":"x"}}`), "1.1"))
	count, err := store.CountRows(ctx, "json_content")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = store.SaveDocument(ctx, pid, []byte(`{not json`), "1.0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSaveSections_UnknownProfessional(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.SaveExperiences(context.Background(), 999, []domain.ExperienceEntry{{Company: "A", Position: "B"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Chunk Store Tests ====================

func TestChunks_SaveGetList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	chunk := domain.ContentChunk{
		ID:           "exp_000_acme",
		Content:      "At Acme as Engineer",
		Type:         domain.ChunkTypeExperience,
		Title:        "Engineer at Acme",
		Metadata:     map[string]any{"company": "Acme", "technologies": []string{"Go"}},
		Importance:   domain.ImportanceHigh,
		DateRange:    "2020-2022",
		SearchWeight: 7,
	}
	require.NoError(t, store.SaveChunk(ctx, chunk))
	require.NoError(t, store.SaveChunk(ctx, domain.ContentChunk{ID: "a_first", Content: "x", Type: domain.ChunkTypeSkills}))

	got, err := store.GetChunk(ctx, "exp_000_acme")
	require.NoError(t, err)
	assert.Equal(t, "exp_000_acme", got.VectorID)
	assert.Equal(t, chunk.Title, got.Title)
	assert.Equal(t, chunk.Importance, got.Importance)
	assert.Equal(t, 7, got.SearchWeight)
	assert.Equal(t, "Acme", got.Metadata["company"])
	assert.Equal(t, []any{"Go"}, got.Metadata["technologies"])
	assert.Equal(t, "Engineer at Acme: At Acme as Engineer", got.ResolvedText())

	ids, err := store.ListChunkIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_first", "exp_000_acme"}, ids)

	all, err := store.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a_first", all[0].ID)
	assert.Empty(t, all[0].DateRange)
}

func TestChunks_UpsertByID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveChunk(ctx, domain.ContentChunk{ID: "a", Content: "old"}))
	require.NoError(t, store.SaveChunk(ctx, domain.ContentChunk{ID: "a", Content: "new"}))

	got, err := store.GetChunk(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Content)
	n, err := store.CountRows(ctx, "content_chunks")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestChunks_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetChunk(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListChunkIDs_EmptyIsNotNil(t *testing.T) {
	store := setupTestStore(t)

	ids, err := store.ListChunkIDs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

// ==================== Audit Store Tests ====================

func TestCountEmpty(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.SaveProfessional(ctx, domain.PersonalInfo{Name: "No Email"})
	require.NoError(t, err)
	require.NoError(t, store.SaveChunk(ctx, domain.ContentChunk{ID: "a", Content: "   ", Type: domain.ChunkTypeSkills}))
	require.NoError(t, store.SaveChunk(ctx, domain.ContentChunk{ID: "b", Content: "text"}))

	for _, tc := range []struct {
		check domain.FieldCheck
		want  int
	}{
		{domain.FieldCheck{Table: "professionals", Field: "name"}, 0},
		{domain.FieldCheck{Table: "professionals", Field: "email"}, 1},
		{domain.FieldCheck{Table: "content_chunks", Field: "content"}, 1},
		{domain.FieldCheck{Table: "content_chunks", Field: "chunk_type"}, 1},
		{domain.FieldCheck{Table: "skills", Field: "skill_name"}, 0},
	} {
		n, err := store.CountEmpty(ctx, tc.check)
		require.NoError(t, err)
		assert.Equal(t, tc.want, n, "%s.%s", tc.check.Table, tc.check.Field)
	}
}

func TestAudit_RejectsUnknownNames(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.CountRows(ctx, "sqlite_master")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.CountEmpty(ctx, domain.FieldCheck{Table: "professionals", Field: "1=1; --"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEnsureSchema_Reset(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	pid, err := store.SaveProfessional(ctx, testInfo())
	require.NoError(t, err)
	_, err = store.SaveProjects(ctx, pid, []domain.ProjectEntry{{Name: "P"}})
	require.NoError(t, err)
	require.NoError(t, store.SaveChunk(ctx, domain.ContentChunk{ID: "a", Content: "x"}))

	require.NoError(t, store.EnsureSchema(ctx, true))

	for _, table := range []string{"professionals", "projects", "content_chunks"} {
		n, err := store.CountRows(ctx, table)
		require.NoError(t, err)
		assert.Zero(t, n, table)
	}
}
