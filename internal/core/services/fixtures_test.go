package services

import "github.com/custodia-labs/twinsync/internal/core/domain"

// sampleProfile returns a document with two experiences and one project
// and no pre-authored chunks.
func sampleProfile() *domain.ProfileDocument {
	return &domain.ProfileDocument{
		PersonalInfo: &domain.PersonalInfo{
			Name:    "Ada Example",
			Title:   "Senior Engineer",
			Contact: domain.Contact{Email: "ada@example.com"},
		},
		Experience: []domain.ExperienceEntry{
			{
				Company:      "Acme Corp",
				Position:     "Senior Engineer",
				Duration:     "2020-2023",
				Description:  "Led the platform team building Java and Spring Boot services.",
				Achievements: []string{"Cut latency from 500ms to 200ms", "Mentored four juniors"},
				Technologies: []string{"Java", "Spring Boot"},
			},
			{
				Company:     "Globex",
				Position:    "Developer",
				Duration:    "2017-2020",
				Description: "Built billing pipelines for a telecom customer base.",
			},
		},
		Skills: &domain.SkillSet{
			Technical: []domain.SkillCategory{
				{Category: "languages", Skills: []domain.Skill{{Name: "Java"}, {Name: "Go"}}},
			},
			SoftSkills: []domain.SoftSkill{{Skill: "Mentoring"}},
		},
		Projects: []domain.ProjectEntry{
			{
				Name:         "Widget App",
				Description:  "A storefront for configurable widgets.",
				Technologies: []string{"React", "Stripe"},
				Role:         "Lead",
				Outcomes:     []string{"Raised conversion 30%"},
			},
		},
		Education: []domain.EducationEntry{
			{Institution: "Example University", Degree: "BSc", Graduation: "2016"},
		},
	}
}
