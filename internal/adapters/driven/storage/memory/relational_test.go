package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

func TestRelationalStore_ProfessionalUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewRelationalStore()

	id1, err := s.SaveProfessional(ctx, domain.PersonalInfo{Name: "Ada", Contact: domain.Contact{Email: "a@x"}})
	require.NoError(t, err)
	id2, err := s.SaveProfessional(ctx, domain.PersonalInfo{Name: "Ada L", Contact: domain.Contact{Email: "a@x"}})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := s.SaveProfessional(ctx, domain.PersonalInfo{Name: "Bob"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	n, err := s.CountRows(ctx, "professionals")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRelationalStore_SectionsRequireProfessional(t *testing.T) {
	ctx := context.Background()
	s := NewRelationalStore()

	_, err := s.SaveProjects(ctx, 42, []domain.ProjectEntry{{Name: "P"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.SaveDocument(ctx, 42, []byte("{}"), "1.0"), domain.ErrNotFound)
}

func TestRelationalStore_SectionsReplaceAndCount(t *testing.T) {
	ctx := context.Background()
	s := NewRelationalStore()
	pid, err := s.SaveProfessional(ctx, domain.PersonalInfo{Name: "Ada"})
	require.NoError(t, err)

	_, err = s.SaveExperiences(ctx, pid, []domain.ExperienceEntry{{Company: "A", Position: "B"}, {Company: "C", Position: ""}})
	require.NoError(t, err)
	_, err = s.SaveExperiences(ctx, pid, []domain.ExperienceEntry{{Company: "A", Position: "B"}})
	require.NoError(t, err)

	n, err := s.SaveSkills(ctx, pid, domain.SkillSet{
		Technical:  []domain.SkillCategory{{Category: "lang", Skills: []domain.Skill{{Name: "Go"}, {Name: ""}}}},
		SoftSkills: []domain.SoftSkill{{Skill: "Writing"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = s.SaveEducation(ctx, pid, []domain.EducationEntry{{Institution: "U"}})
	require.NoError(t, err)
	require.NoError(t, s.SaveDocument(ctx, pid, []byte("{}"), "1.0"))

	for table, want := range map[string]int{
		"experiences":  1,
		"skills":       3,
		"projects":     0,
		"education":    1,
		"json_content": 1,
	} {
		got, err := s.CountRows(ctx, table)
		require.NoError(t, err)
		assert.Equal(t, want, got, table)
	}

	empty, err := s.CountEmpty(ctx, domain.FieldCheck{Table: "skills", Field: "skill_name"})
	require.NoError(t, err)
	assert.Equal(t, 1, empty)

	empty, err = s.CountEmpty(ctx, domain.FieldCheck{Table: "professionals", Field: "email"})
	require.NoError(t, err)
	assert.Equal(t, 1, empty)
}

func TestRelationalStore_Chunks(t *testing.T) {
	ctx := context.Background()
	s := NewRelationalStore()

	require.NoError(t, s.SaveChunk(ctx, domain.ContentChunk{ID: "b", Content: "second", Type: domain.ChunkTypeProject}))
	require.NoError(t, s.SaveChunk(ctx, domain.ContentChunk{ID: "a", Content: "first", Title: "A"}))

	got, err := s.GetChunk(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.VectorID)
	assert.Equal(t, "A: first", got.ResolvedText())

	_, err = s.GetChunk(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ids, err := s.ListChunkIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	all, err := s.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[1].ID)

	empty, err := s.CountEmpty(ctx, domain.FieldCheck{Table: "content_chunks", Field: "chunk_type"})
	require.NoError(t, err)
	assert.Equal(t, 1, empty)
}

func TestRelationalStore_UnknownNames(t *testing.T) {
	ctx := context.Background()
	s := NewRelationalStore()

	_, err := s.CountRows(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = s.CountEmpty(ctx, domain.FieldCheck{Table: "nope", Field: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRelationalStore_EnsureSchemaReset(t *testing.T) {
	ctx := context.Background()
	s := NewRelationalStore()
	require.NoError(t, s.SaveChunk(ctx, domain.ContentChunk{ID: "a", Content: "x"}))

	require.NoError(t, s.EnsureSchema(ctx, false))
	n, _ := s.CountRows(ctx, "content_chunks")
	assert.Equal(t, 1, n)

	require.NoError(t, s.EnsureSchema(ctx, true))
	n, _ = s.CountRows(ctx, "content_chunks")
	assert.Zero(t, n)
	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}
