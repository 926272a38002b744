package services

import "github.com/custodia-labs/twinsync/internal/core/domain"

// Default sizes for the harness modes.
const (
	DefaultConcurrencyWorkers = 5
	FilterTopK                = 5
	FilterPassAccuracy        = 0.8
	FilterSuitePassRate       = 0.75
	HarnessPassRate           = 0.6
)

// DefaultQueries is the fixed validation suite.
func DefaultQueries() []domain.SearchQuery {
	const (
		exp     = domain.ChunkTypeExperience
		skills  = domain.ChunkTypeSkills
		edu     = domain.ChunkTypeEducation
		summary = domain.ChunkTypeSummary
		info    = domain.ChunkTypePersonalInfo

		// Authored profiles tag project and soft skill chunks with these plural forms.
		projects   = domain.ChunkType("projects")
		softSkills = domain.ChunkType("soft_skills")
	)
	types := func(t ...domain.ChunkType) []domain.ChunkType { return t }
	query := func(id, text, category string, expected []domain.ChunkType, keywords []string, minScore float64) domain.SearchQuery {
		return domain.SearchQuery{
			ID:                   id,
			Query:                text,
			Category:             category,
			ExpectedContentTypes: expected,
			ExpectedKeywords:     keywords,
			MinRelevanceScore:    minScore,
		}
	}

	return []domain.SearchQuery{
		query("exp_001", "What experience do you have with AI and machine learning?", "experience",
			types(exp, skills, projects), []string{"AI", "machine learning", "ML", "artificial intelligence"}, 0.75),
		query("exp_002", "Tell me about your most challenging project", "projects",
			types(projects, exp), []string{"challenging", "complex", "difficult", "migration", "scale"}, 0.7),
		query("exp_003", "What banking and financial services experience do you have?", "experience",
			types(exp), []string{"banking", "financial", "ING", "microservices", "security"}, 0.8),
		query("tech_001", "What are your technical skills in web development?", "skills",
			types(skills, projects, exp), []string{"React", "Next.js", "JavaScript", "TypeScript", "web", "frontend"}, 0.75),
		query("tech_002", "How experienced are you with Java and Spring Boot?", "skills",
			types(skills, exp), []string{"Java", "Spring Boot", "microservices", "enterprise", "8 years"}, 0.8),
		query("tech_003", "What database technologies have you worked with?", "skills",
			types(skills, exp), []string{"PostgreSQL", "MySQL", "Oracle", "database", "SQL", "optimization"}, 0.75),
		query("proj_001", "Show me your e-commerce development work", "projects",
			types(projects, exp), []string{"Shopify", "e-commerce", "Stripe", "PayPal", "conversion"}, 0.8),
		query("proj_002", "What performance optimizations have you implemented?", "performance",
			types(exp, projects), []string{"performance", "optimization", "latency", "500ms", "200ms", "30%"}, 0.75),
		query("lead_001", "Describe your leadership and mentoring experience", "leadership",
			types(exp, softSkills), []string{"mentoring", "leadership", "team", "junior", "Agile", "15%"}, 0.75),
		query("lead_002", "How do you handle team collaboration and code reviews?", "collaboration",
			types(skills, exp), []string{"collaboration", "code review", "team", "knowledge sharing"}, 0.7),
		query("domain_001", "What telecom industry experience do you have?", "industry",
			types(exp), []string{"telecom", "Amdocs", "reliability", "availability", "97%"}, 0.8),
		query("domain_002", "Tell me about your cloud and DevOps experience", "devops",
			types(skills, exp), []string{"AWS", "Docker", "Jenkins", "CI/CD", "Kubernetes", "cloud"}, 0.75),
		query("edu_001", "What is your educational background?", "education",
			types(edu), []string{"Brighton College", "Electronics Engineering", "Cyber Security"}, 0.7),
		query("avail_001", "Are you available for freelance work in Melbourne?", "availability",
			types(info, summary), []string{"Melbourne", "freelance", "available", "Australia"}, 0.75),
		query("achieve_001", "What quantifiable results have you achieved in your career?", "achievements",
			types(exp, projects), []string{"20%", "30%", "40%", "500ms", "200ms", "16M", "improvement"}, 0.75),
	}
}

// DefaultFilterTests are the metadata-filter probes.
func DefaultFilterTests() []domain.FilterTest {
	return []domain.FilterTest{
		{Name: "Experience Filter", Query: "technical skills and development experience",
			Filter: domain.VectorFilter{Field: "chunk_type", Value: string(domain.ChunkTypeExperience)}},
		{Name: "Skills Filter", Query: "programming languages and frameworks",
			Filter: domain.VectorFilter{Field: "chunk_type", Value: string(domain.ChunkTypeSkills)}},
		{Name: "Projects Filter", Query: "software development projects",
			Filter: domain.VectorFilter{Field: "chunk_type", Value: string(domain.ChunkTypeProject)}},
		{Name: "High Importance Filter", Query: "most important professional information",
			Filter: domain.VectorFilter{Field: "importance", Value: string(domain.ImportanceCritical)}},
	}
}
