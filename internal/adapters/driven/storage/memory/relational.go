package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
)

// Ensure RelationalStore implements the interface.
var _ driven.RelationalStore = (*RelationalStore)(nil)

type skillRow struct {
	category  string
	name      string
	skillType string
}

// RelationalStore is an in-memory implementation of driven.RelationalStore.
// It backs dry runs and tests; nothing survives the process.
type RelationalStore struct {
	mu            sync.RWMutex
	nextID        int64
	professionals map[int64]domain.PersonalInfo
	experiences   map[int64][]domain.ExperienceEntry
	skills        map[int64][]skillRow
	projects      map[int64][]domain.ProjectEntry
	education     map[int64][]domain.EducationEntry
	documents     map[int64][]byte
	chunks        map[string]domain.ContentChunk
}

// NewRelationalStore creates a new in-memory relational store.
func NewRelationalStore() *RelationalStore {
	s := &RelationalStore{}
	s.reset()
	return s
}

func (s *RelationalStore) reset() {
	s.professionals = make(map[int64]domain.PersonalInfo)
	s.experiences = make(map[int64][]domain.ExperienceEntry)
	s.skills = make(map[int64][]skillRow)
	s.projects = make(map[int64][]domain.ProjectEntry)
	s.education = make(map[int64][]domain.EducationEntry)
	s.documents = make(map[int64][]byte)
	s.chunks = make(map[string]domain.ContentChunk)
}

// Ping always succeeds.
func (s *RelationalStore) Ping(_ context.Context) error {
	return nil
}

// EnsureSchema clears all tables when reset is true.
func (s *RelationalStore) EnsureSchema(_ context.Context, reset bool) error {
	if !reset {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// Close is a no-op.
func (s *RelationalStore) Close() error {
	return nil
}

// SaveProfessional upserts the identity row, matched by email then name.
func (s *RelationalStore) SaveProfessional(_ context.Context, info domain.PersonalInfo) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.professionals {
		if sameProfessional(p, info) {
			s.professionals[id] = info
			return id, nil
		}
	}
	s.nextID++
	s.professionals[s.nextID] = info
	return s.nextID, nil
}

func sameProfessional(a, b domain.PersonalInfo) bool {
	if a.Contact.Email != "" || b.Contact.Email != "" {
		return a.Contact.Email == b.Contact.Email
	}
	return a.Name == b.Name
}

// SaveExperiences replaces the professional's experience rows.
func (s *RelationalStore) SaveExperiences(_ context.Context, pid int64, entries []domain.ExperienceEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireProfessional(pid); err != nil {
		return 0, err
	}
	s.experiences[pid] = append([]domain.ExperienceEntry(nil), entries...)
	return len(entries), nil
}

// SaveSkills replaces the professional's technical and soft skill rows.
func (s *RelationalStore) SaveSkills(_ context.Context, pid int64, skills domain.SkillSet) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireProfessional(pid); err != nil {
		return 0, err
	}
	var rows []skillRow
	for _, cat := range skills.Technical {
		for _, sk := range cat.Skills {
			rows = append(rows, skillRow{category: cat.Category, name: sk.Name, skillType: "technical"})
		}
	}
	for _, soft := range skills.SoftSkills {
		rows = append(rows, skillRow{category: "soft_skills", name: soft.Skill, skillType: "soft"})
	}
	s.skills[pid] = rows
	return len(rows), nil
}

// SaveProjects replaces the professional's project rows.
func (s *RelationalStore) SaveProjects(_ context.Context, pid int64, entries []domain.ProjectEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireProfessional(pid); err != nil {
		return 0, err
	}
	s.projects[pid] = append([]domain.ProjectEntry(nil), entries...)
	return len(entries), nil
}

// SaveEducation replaces the professional's education rows.
func (s *RelationalStore) SaveEducation(_ context.Context, pid int64, entries []domain.EducationEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireProfessional(pid); err != nil {
		return 0, err
	}
	s.education[pid] = append([]domain.EducationEntry(nil), entries...)
	return len(entries), nil
}

// SaveDocument stores a copy of the raw document.
func (s *RelationalStore) SaveDocument(_ context.Context, pid int64, raw []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireProfessional(pid); err != nil {
		return err
	}
	s.documents[pid] = append([]byte(nil), raw...)
	return nil
}

func (s *RelationalStore) requireProfessional(pid int64) error {
	if _, ok := s.professionals[pid]; !ok {
		return fmt.Errorf("professional %d: %w", pid, domain.ErrNotFound)
	}
	return nil
}

// SaveChunk upserts a chunk by ID.
func (s *RelationalStore) SaveChunk(_ context.Context, chunk domain.ContentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[chunk.ID] = chunk
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *RelationalStore) GetChunk(_ context.Context, id string) (*domain.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.StoredChunk{ContentChunk: c, VectorID: c.ID}, nil
}

// ListChunkIDs returns all chunk IDs, sorted.
func (s *RelationalStore) ListChunkIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.chunks))
	for id := range s.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListChunks returns all chunks sorted by ID.
func (s *RelationalStore) ListChunks(ctx context.Context) ([]domain.StoredChunk, error) {
	ids, _ := s.ListChunkIDs(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StoredChunk, 0, len(ids))
	for _, id := range ids {
		c, ok := s.chunks[id]
		if !ok {
			continue
		}
		out = append(out, domain.StoredChunk{ContentChunk: c, VectorID: c.ID})
	}
	return out, nil
}

// CountRows returns the number of rows in a table.
func (s *RelationalStore) CountRows(_ context.Context, table string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch table {
	case "professionals":
		return len(s.professionals), nil
	case "experiences":
		return countAll(s.experiences), nil
	case "skills":
		return countAll(s.skills), nil
	case "projects":
		return countAll(s.projects), nil
	case "education":
		return countAll(s.education), nil
	case "json_content":
		return len(s.documents), nil
	case "content_chunks":
		return len(s.chunks), nil
	default:
		return 0, fmt.Errorf("unknown table %q: %w", table, domain.ErrInvalidInput)
	}
}

func countAll[T any](m map[int64][]T) int {
	n := 0
	for _, rows := range m {
		n += len(rows)
	}
	return n
}

// CountEmpty counts rows whose field is blank.
func (s *RelationalStore) CountEmpty(_ context.Context, check domain.FieldCheck) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var values []string
	switch check.Table + "." + check.Field {
	case "professionals.name":
		for _, p := range s.professionals {
			values = append(values, p.Name)
		}
	case "professionals.email":
		for _, p := range s.professionals {
			values = append(values, p.Contact.Email)
		}
	case "experiences.company", "experiences.position":
		for _, rows := range s.experiences {
			for _, e := range rows {
				if check.Field == "company" {
					values = append(values, e.Company)
				} else {
					values = append(values, e.Position)
				}
			}
		}
	case "skills.skill_name":
		for _, rows := range s.skills {
			for _, r := range rows {
				values = append(values, r.name)
			}
		}
	case "content_chunks.content", "content_chunks.chunk_type":
		for _, c := range s.chunks {
			if check.Field == "content" {
				values = append(values, c.Content)
			} else {
				values = append(values, string(c.Type))
			}
		}
	default:
		return 0, fmt.Errorf("unknown field %s.%s: %w", check.Table, check.Field, domain.ErrInvalidInput)
	}

	empty := 0
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			empty++
		}
	}
	return empty, nil
}
