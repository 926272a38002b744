package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/twinsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
)

// --- Mock implementations ---

// faultyRelational wraps the memory store and fails selected operations.
type faultyRelational struct {
	*memory.RelationalStore
	pingErr     error
	failChunks  map[string]bool
	failSkills  error
	failProfile error
}

func newFaultyRelational() *faultyRelational {
	return &faultyRelational{RelationalStore: memory.NewRelationalStore(), failChunks: map[string]bool{}}
}

func (f *faultyRelational) Ping(ctx context.Context) error {
	if f.pingErr != nil {
		return f.pingErr
	}
	return f.RelationalStore.Ping(ctx)
}

func (f *faultyRelational) SaveProfessional(ctx context.Context, info domain.PersonalInfo) (int64, error) {
	if f.failProfile != nil {
		return 0, f.failProfile
	}
	return f.RelationalStore.SaveProfessional(ctx, info)
}

func (f *faultyRelational) SaveSkills(ctx context.Context, pid int64, skills domain.SkillSet) (int, error) {
	if f.failSkills != nil {
		return 0, f.failSkills
	}
	return f.RelationalStore.SaveSkills(ctx, pid, skills)
}

func (f *faultyRelational) SaveChunk(ctx context.Context, chunk domain.ContentChunk) error {
	if f.failChunks[chunk.ID] {
		return errors.New("insert failed")
	}
	return f.RelationalStore.SaveChunk(ctx, chunk)
}

// recordingVectors wraps the memory vector store, records upsert batches
// and can withhold or fail writes and queries.
type recordingVectors struct {
	*memory.VectorStore

	mu        sync.Mutex
	batches   [][]string
	batchTime []time.Time
	withhold  map[string]bool
	upsertErr error
	failBatch int
	infoErr   error
	queryErr  error
	queryFail map[string]bool
	delay     time.Duration

	// rows, when set, is checked for each upserted ID; IDs without a row
	// are recorded in orphans.
	rows    driven.ChunkStore
	orphans []string
}

func newRecordingVectors() *recordingVectors {
	return &recordingVectors{
		VectorStore: memory.NewVectorStore(domain.DefaultExpectedDimension),
		withhold:    map[string]bool{},
		queryFail:   map[string]bool{},
	}
}

func (r *recordingVectors) Upsert(ctx context.Context, vectors []domain.IndexedVector) error {
	r.mu.Lock()
	ids := make([]string, len(vectors))
	for i, v := range vectors {
		ids[i] = v.ID
	}
	if r.rows != nil {
		for _, id := range ids {
			if _, err := r.rows.GetChunk(ctx, id); err != nil {
				r.orphans = append(r.orphans, id)
			}
		}
	}
	r.batches = append(r.batches, ids)
	r.batchTime = append(r.batchTime, time.Now())
	n := len(r.batches)
	r.mu.Unlock()

	if r.upsertErr != nil && (r.failBatch == 0 || r.failBatch == n) {
		return r.upsertErr
	}

	kept := vectors[:0:0]
	for _, v := range vectors {
		if !r.withhold[v.ID] {
			kept = append(kept, v)
		}
	}
	return r.VectorStore.Upsert(ctx, kept)
}

func (r *recordingVectors) Query(ctx context.Context, q domain.VectorQuery) ([]domain.VectorHit, error) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.queryErr != nil || r.queryFail[q.Text] {
		return nil, errors.New("query failed")
	}
	return r.VectorStore.Query(ctx, q)
}

func (r *recordingVectors) Info(ctx context.Context) (domain.VectorInfo, error) {
	if r.infoErr != nil {
		return domain.VectorInfo{}, r.infoErr
	}
	return r.VectorStore.Info(ctx)
}

// queryOnlyVectors hides the optional listing and reset capabilities.
type queryOnlyVectors struct {
	driven.VectorStore
}

// staticVectors returns fixed hits.
type staticVectors struct {
	hits []domain.VectorHit
	info domain.VectorInfo
}

func (s *staticVectors) Upsert(_ context.Context, _ []domain.IndexedVector) error { return nil }

func (s *staticVectors) Query(_ context.Context, q domain.VectorQuery) ([]domain.VectorHit, error) {
	time.Sleep(time.Millisecond)
	var out []domain.VectorHit
	for _, h := range s.hits {
		if q.Filter != nil && !q.Filter.Matches(h.Metadata) {
			continue
		}
		out = append(out, h)
	}
	if q.TopK > 0 && len(out) > q.TopK {
		out = out[:q.TopK]
	}
	return out, nil
}

func (s *staticVectors) Info(_ context.Context) (domain.VectorInfo, error) { return s.info, nil }

// mapCache is a ContentCache backed by a map.
type mapCache struct {
	mu     sync.Mutex
	values map[string]string
	gets   int
}

func newMapCache() *mapCache { return &mapCache{values: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.values[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, id, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[id] = content
	return nil
}

func (c *mapCache) Delete(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.values, id)
	}
	return nil
}

func (c *mapCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = map[string]string{}
	return nil
}

func (c *mapCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[id]
	return ok
}
