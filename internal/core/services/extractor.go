package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driving"
)

// Ensure ChunkExtractor implements the interface.
var _ driving.Extractor = (*ChunkExtractor)(nil)

// ChunkExtractor derives retrieval chunks from a profile document.
// It holds no state; the zero value is ready to use.
type ChunkExtractor struct{}

// NewChunkExtractor creates a new chunk extractor.
func NewChunkExtractor() *ChunkExtractor {
	return &ChunkExtractor{}
}

// Extract returns the pre-authored chunks when the document carries any,
// otherwise one synthesised chunk per experience and per project entry.
func (e *ChunkExtractor) Extract(doc *domain.ProfileDocument) ([]domain.ContentChunk, error) {
	if doc == nil {
		return nil, &domain.ValidationError{Field: "document", Reason: "no document", Err: domain.ErrNothingToIndex}
	}

	if len(doc.ContentChunks) > 0 {
		chunks := make([]domain.ContentChunk, 0, len(doc.ContentChunks))
		for i, authored := range doc.ContentChunks {
			if authored.ID == "" {
				return nil, &domain.ValidationError{
					Field:  fmt.Sprintf("content_chunks[%d].id", i),
					Reason: "missing id",
				}
			}
			chunks = append(chunks, fromAuthored(authored))
		}
		return chunks, nil
	}

	if len(doc.Experience) == 0 && len(doc.Projects) == 0 {
		return nil, &domain.ValidationError{
			Field:  "document",
			Reason: "no content chunks, experience or projects",
			Err:    domain.ErrNothingToIndex,
		}
	}

	chunks := make([]domain.ContentChunk, 0, len(doc.Experience)+len(doc.Projects))
	for i, exp := range doc.Experience {
		chunks = append(chunks, fromExperience(i, exp))
	}
	for i, proj := range doc.Projects {
		chunks = append(chunks, fromProject(i, proj))
	}
	return chunks, nil
}

// QualityIssues returns the IDs of chunks shorter than domain.MinContentLength.
func (e *ChunkExtractor) QualityIssues(chunks []domain.ContentChunk) []string {
	var short []string
	for _, c := range chunks {
		if c.ContentLength() < domain.MinContentLength {
			short = append(short, c.ID)
		}
	}
	return short
}

// Slug lowercases a name and replaces spaces with underscores.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func fromAuthored(a domain.AuthoredChunk) domain.ContentChunk {
	meta := a.Metadata
	if meta == nil {
		meta = map[string]any{}
	}

	importance := domain.ImportanceMedium
	if v, ok := meta["importance"].(string); ok && v != "" {
		importance = domain.Importance(v)
	}

	var dateRange string
	if v, ok := meta["date_range"].(string); ok {
		dateRange = v
	}

	return domain.ContentChunk{
		ID:           a.ID,
		Content:      a.Content,
		Type:         domain.ChunkType(a.Type),
		Title:        a.Title,
		Metadata:     meta,
		Importance:   importance,
		DateRange:    dateRange,
		SearchWeight: searchWeight(meta["search_weight"]),
	}
}

func searchWeight(v any) int {
	switch w := v.(type) {
	case int:
		return w
	case int64:
		return int(w)
	case float64:
		return int(math.Round(w))
	default:
		return domain.DefaultSearchWeight
	}
}

func fromExperience(i int, exp domain.ExperienceEntry) domain.ContentChunk {
	content := fmt.Sprintf("At %s as %s (%s): %s", exp.Company, exp.Position, exp.Duration, exp.Description)
	if len(exp.Achievements) > 0 {
		content += " Key achievements: " + strings.Join(exp.Achievements, "; ")
	}

	technologies := exp.Technologies
	if technologies == nil {
		technologies = []string{}
	}

	return domain.ContentChunk{
		ID:      fmt.Sprintf("exp_%03d_%s", i, Slug(exp.Company)),
		Content: content,
		Type:    domain.ChunkTypeExperience,
		Title:   fmt.Sprintf("%s at %s", exp.Position, exp.Company),
		Metadata: map[string]any{
			"company":      exp.Company,
			"position":     exp.Position,
			"technologies": technologies,
			"category":     "work_experience",
		},
		Importance:   domain.ImportanceHigh,
		DateRange:    exp.Duration,
		SearchWeight: domain.DefaultSearchWeight,
	}
}

func fromProject(i int, proj domain.ProjectEntry) domain.ContentChunk {
	content := fmt.Sprintf("Project: %s. %s", proj.Name, proj.Description)
	if len(proj.Outcomes) > 0 {
		content += " Outcomes: " + strings.Join(proj.Outcomes, "; ")
	}

	technologies := proj.Technologies
	if technologies == nil {
		technologies = []string{}
	}

	return domain.ContentChunk{
		ID:      fmt.Sprintf("proj_%03d_%s", i, Slug(proj.Name)),
		Content: content,
		Type:    domain.ChunkTypeProject,
		Title:   proj.Name,
		Metadata: map[string]any{
			"technologies": technologies,
			"role":         proj.Role,
			"category":     "projects",
		},
		Importance:   domain.ImportanceHigh,
		SearchWeight: domain.DefaultSearchWeight,
	}
}
