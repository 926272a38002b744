package domain

// ProfileDocument is the structured professional profile that feeds a migration.
// It is owned by the loader and treated as read-only by the core.
type ProfileDocument struct {
	PersonalInfo  *PersonalInfo     `json:"personalInfo,omitempty"`
	Experience    []ExperienceEntry `json:"experience,omitempty"`
	Skills        *SkillSet         `json:"skills,omitempty"`
	Projects      []ProjectEntry    `json:"projects,omitempty"`
	Education     []EducationEntry  `json:"education,omitempty"`
	ContentChunks []AuthoredChunk   `json:"content_chunks,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`

	// Raw holds the undecoded source bytes for full-document storage.
	Raw []byte `json:"-"`
}

// PersonalInfo is the identity section of a profile.
type PersonalInfo struct {
	Name              string  `json:"name"`
	Title             string  `json:"title,omitempty"`
	Location          string  `json:"location,omitempty"`
	Summary           string  `json:"summary,omitempty"`
	ElevatorPitch     string  `json:"elevator_pitch,omitempty"`
	Availability      string  `json:"availability,omitempty"`
	WorkAuthorization string  `json:"work_authorization,omitempty"`
	Contact           Contact `json:"contact"`
}

// Contact holds the ways to reach the profile owner.
type Contact struct {
	Email     string `json:"email,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	GitHub    string `json:"github,omitempty"`
}

// ExperienceEntry is one employment record.
type ExperienceEntry struct {
	Company         string   `json:"company"`
	Position        string   `json:"position"`
	Duration        string   `json:"duration,omitempty"`
	Description     string   `json:"description,omitempty"`
	Achievements    []string `json:"achievements,omitempty"`
	Technologies    []string `json:"technologies,omitempty"`
	SkillsDeveloped []string `json:"skills_developed,omitempty"`
	Impact          string   `json:"impact,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// SkillSet groups technical skill categories and soft skills.
type SkillSet struct {
	Technical  []SkillCategory `json:"technical,omitempty"`
	SoftSkills []SoftSkill     `json:"soft_skills,omitempty"`
}

// SkillCategory is a named group of technical skills.
type SkillCategory struct {
	Category string  `json:"category,omitempty"`
	Skills   []Skill `json:"skills,omitempty"`
}

// Skill is a single technical skill.
type Skill struct {
	Name        string   `json:"name"`
	Proficiency string   `json:"proficiency,omitempty"`
	Experience  string   `json:"experience,omitempty"`
	Context     string   `json:"context,omitempty"`
	Projects    []string `json:"projects,omitempty"`
}

// SoftSkill is a non-technical skill with optional context.
type SoftSkill struct {
	Skill   string `json:"skill"`
	Context string `json:"context,omitempty"`
}

// ProjectEntry is one portfolio project.
type ProjectEntry struct {
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Technologies []string     `json:"technologies,omitempty"`
	Role         string       `json:"role,omitempty"`
	Outcomes     []string     `json:"outcomes,omitempty"`
	Challenges   []string     `json:"challenges,omitempty"`
	Links        ProjectLinks `json:"links"`
}

// ProjectLinks are the external references of a project.
type ProjectLinks struct {
	Demo          string `json:"demo,omitempty"`
	Repository    string `json:"repository,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// EducationEntry is one education record.
// Graduation is kept as text; only a purely numeric value is stored as a year.
type EducationEntry struct {
	Institution        string   `json:"institution"`
	Degree             string   `json:"degree,omitempty"`
	Field              string   `json:"field,omitempty"`
	Graduation         string   `json:"graduation,omitempty"`
	Achievements       []string `json:"achievements,omitempty"`
	RelevantCoursework []string `json:"relevant_coursework,omitempty"`
	Projects           []string `json:"projects,omitempty"`
	GPA                string   `json:"gpa,omitempty"`
}

// AuthoredChunk is a pre-authored retrieval chunk embedded in the profile.
type AuthoredChunk struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RequiredSections lists the top-level sections a profile must carry to be migrated.
var RequiredSections = []string{"personalInfo", "experience", "skills", "projects"}

// MissingSections returns the required sections absent from the document.
func (d *ProfileDocument) MissingSections() []string {
	var missing []string
	if d.PersonalInfo == nil {
		missing = append(missing, "personalInfo")
	}
	if d.Experience == nil {
		missing = append(missing, "experience")
	}
	if d.Skills == nil {
		missing = append(missing, "skills")
	}
	if d.Projects == nil {
		missing = append(missing, "projects")
	}
	return missing
}

// SkillCount returns the number of technical and soft skills.
func (d *ProfileDocument) SkillCount() int {
	if d.Skills == nil {
		return 0
	}
	n := len(d.Skills.SoftSkills)
	for _, c := range d.Skills.Technical {
		n += len(c.Skills)
	}
	return n
}

// Version returns the document's metadata version, defaulting to "1.0".
func (d *ProfileDocument) Version() string {
	if v, ok := d.Metadata["version"].(string); ok && v != "" {
		return v
	}
	return "1.0"
}
