package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// ==================== Profile Store ====================

// SaveProfessional upserts the identity row. Rows are matched by email,
// or by name when the profile carries no email.
func (s *Store) SaveProfessional(ctx context.Context, info domain.PersonalInfo) (int64, error) {
	var (
		id  int64
		row *sql.Row
	)
	if info.Contact.Email != "" {
		row = s.db.QueryRowContext(ctx, s.rebind(
			"SELECT id FROM professionals WHERE email = ? ORDER BY id LIMIT 1"), info.Contact.Email)
	} else {
		row = s.db.QueryRowContext(ctx, s.rebind(
			"SELECT id FROM professionals WHERE name = ? AND (email IS NULL OR email = '') ORDER BY id LIMIT 1"),
			info.Name)
	}

	args := []any{
		info.Name, nullString(info.Title), nullString(info.Location), nullString(info.Contact.Email),
		nullString(info.Contact.LinkedIn), nullString(info.Contact.Portfolio), nullString(info.Contact.GitHub),
		nullString(info.Summary), nullString(info.ElevatorPitch), nullString(info.Availability),
		nullString(info.WorkAuthorization),
	}

	err := row.Scan(&id)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx, s.rebind(`
			UPDATE professionals SET
				name = ?, title = ?, location = ?, email = ?, linkedin = ?, portfolio = ?, github = ?,
				summary = ?, elevator_pitch = ?, availability = ?, work_authorization = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`), append(args, id)...)
		if err != nil {
			return 0, fmt.Errorf("updating professional: %w", err)
		}
		return id, nil
	case isNoRows(err):
		err = s.db.QueryRowContext(ctx, s.rebind(`
			INSERT INTO professionals
				(name, title, location, email, linkedin, portfolio, github,
				 summary, elevator_pitch, availability, work_authorization)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`), args...).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("inserting professional: %w", err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("looking up professional: %w", err)
	}
}

// SaveExperiences replaces the professional's experience rows.
func (s *Store) SaveExperiences(ctx context.Context, pid int64, entries []domain.ExperienceEntry) (int, error) {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			pid, e.Company, e.Position, nullString(e.Duration), nullString(e.Description),
			jsonList(e.Achievements), jsonList(e.Technologies), jsonList(e.SkillsDeveloped),
			nullString(e.Impact), jsonList(e.Keywords),
		})
	}
	return s.replaceRows(ctx, "experiences", pid, `
		INSERT INTO experiences
			(professional_id, company, position, duration, description,
			 achievements, technologies, skills_developed, impact, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rows)
}

// SaveSkills replaces the professional's skill rows. Soft skills are stored
// under the soft_skills category with skill_type soft.
func (s *Store) SaveSkills(ctx context.Context, pid int64, skills domain.SkillSet) (int, error) {
	var rows [][]any
	for _, cat := range skills.Technical {
		for _, sk := range cat.Skills {
			rows = append(rows, []any{
				pid, nullString(cat.Category), sk.Name, nullString(sk.Proficiency),
				nullString(sk.Experience), nullString(sk.Context), jsonList(sk.Projects), "technical",
			})
		}
	}
	for _, soft := range skills.SoftSkills {
		rows = append(rows, []any{
			pid, "soft_skills", soft.Skill, nil, nil, nullString(soft.Context), jsonList(nil), "soft",
		})
	}
	return s.replaceRows(ctx, "skills", pid, `
		INSERT INTO skills
			(professional_id, category, skill_name, proficiency,
			 experience_years, context, projects, skill_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rows)
}

// SaveProjects replaces the professional's project rows.
func (s *Store) SaveProjects(ctx context.Context, pid int64, entries []domain.ProjectEntry) (int, error) {
	rows := make([][]any, 0, len(entries))
	for _, p := range entries {
		rows = append(rows, []any{
			pid, p.Name, nullString(p.Description), jsonList(p.Technologies), nullString(p.Role),
			jsonList(p.Outcomes), jsonList(p.Challenges),
			nullString(p.Links.Demo), nullString(p.Links.Repository), nullString(p.Links.Documentation),
		})
	}
	return s.replaceRows(ctx, "projects", pid, `
		INSERT INTO projects
			(professional_id, name, description, technologies, role, outcomes, challenges,
			 demo_url, repository_url, documentation_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rows)
}

// SaveEducation replaces the professional's education rows.
func (s *Store) SaveEducation(ctx context.Context, pid int64, entries []domain.EducationEntry) (int, error) {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			pid, e.Institution, nullString(e.Degree), nullString(e.Field),
			nullString(e.Graduation), graduationYear(e.Graduation),
			jsonList(e.Achievements), jsonList(e.RelevantCoursework), jsonList(e.Projects), nullString(e.GPA),
		})
	}
	return s.replaceRows(ctx, "education", pid, `
		INSERT INTO education
			(professional_id, institution, degree, field, graduation, graduation_year,
			 achievements, relevant_coursework, projects, gpa)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rows)
}

// SaveDocument replaces the stored copy of the raw profile document.
func (s *Store) SaveDocument(ctx context.Context, pid int64, raw []byte, version string) error {
	if !json.Valid(raw) {
		return &domain.ValidationError{Field: "json_data", Reason: "document is not valid JSON"}
	}
	_, err := s.replaceRows(ctx, "json_content", pid, `
		INSERT INTO json_content (professional_id, content_type, json_data, version)
		VALUES (?, 'portfolio', ?, ?)
	`, [][]any{{pid, string(raw), nullString(version)}})
	return err
}

// replaceRows deletes the professional's rows in table and inserts rows,
// all in one transaction.
func (s *Store) replaceRows(ctx context.Context, table string, pid int64, insert string, rows [][]any) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM professionals WHERE id = ?"), pid).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("checking professional: %w", err)
	}
	if exists == 0 {
		return 0, fmt.Errorf("professional %d: %w", pid, domain.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM "+table+" WHERE professional_id = ?"), pid); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", table, err)
	}

	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, s.rebind(insert))
		if err != nil {
			return 0, fmt.Errorf("preparing %s insert: %w", table, err)
		}
		defer stmt.Close()

		for i, args := range rows {
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return 0, fmt.Errorf("inserting %s row %d: %w", table, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s: %w", table, err)
	}
	return len(rows), nil
}

// jsonList encodes a string list as JSON text, never null.
func jsonList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// graduationYear returns the year for a purely numeric graduation value.
func graduationYear(graduation string) sql.NullInt64 {
	g := strings.TrimSpace(graduation)
	if g == "" {
		return sql.NullInt64{}
	}
	year, err := strconv.ParseInt(g, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: year, Valid: true}
}
