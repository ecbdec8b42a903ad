package core

import (
	"encoding/binary"
	"math"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier used for cache keys and fingerprints.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Subject is a high-school subject that programs may weight.
type Subject string

const (
	SubjectArabic      Subject = "arabic_language"
	SubjectEnglish     Subject = "english_language"
	SubjectMathematics Subject = "mathematics"
	SubjectPhysics     Subject = "physics"
	SubjectChemistry   Subject = "chemistry"
	SubjectBiology     Subject = "biology"
)

// Subjects is the fixed, ordered subject set used for grade matching.
var Subjects = []Subject{
	SubjectArabic,
	SubjectEnglish,
	SubjectMathematics,
	SubjectPhysics,
	SubjectChemistry,
	SubjectBiology,
}

// DefaultGrade is assumed for any subject the profile does not report.
const DefaultGrade = 50.0

// IsKnownSubject reports whether s belongs to Subjects.
func IsKnownSubject(s Subject) bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// CatalogItem is one academic program. Items are read-only once loaded;
// absent text fields are empty strings and absent numbers are zero.
type CatalogItem struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Domain              string              `json:"domain"`
	Description         string              `json:"description"`
	CoreSubjects        string              `json:"core_subjects"`
	InterestKeywords    string              `json:"interests_keywords"`
	Skills              string              `json:"skills"`
	AcquiredSkills      string              `json:"acquired_skills"`
	CareerPaths         string              `json:"career_paths"`
	JobSectors          string              `json:"job_sectors"`
	TrackRequirement    string              `json:"track_requirement"`
	MinGPA              float64             `json:"min_highschool_gpa"`
	StudyDurationYears  float64             `json:"study_duration_years"`
	AutomationRiskScore float64             `json:"automation_risk_score"`
	SubjectWeights      map[Subject]float64 `json:"subject_weights,omitempty"`
}

// textFields returns the searchable fields in concatenation order.
func (c *CatalogItem) textFields() []string {
	return []string{
		c.Name,
		c.Domain,
		c.Description,
		c.CoreSubjects,
		c.InterestKeywords,
		c.Skills,
		c.AcquiredSkills,
		c.CareerPaths,
		c.JobSectors,
		c.TrackRequirement,
	}
}

// SearchableText space-joins every text-bearing field. Empty fields contribute nothing.
func (c *CatalogItem) SearchableText() string {
	fields := c.textFields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// Weight returns how much subject s matters for this program (0 when absent).
func (c *CatalogItem) Weight(s Subject) float64 {
	if c.SubjectWeights == nil {
		return 0
	}
	return c.SubjectWeights[s]
}

// Clone returns a deep copy so callers cannot mutate an indexed item.
func (c *CatalogItem) Clone() CatalogItem {
	out := *c
	if c.SubjectWeights != nil {
		out.SubjectWeights = make(map[Subject]float64, len(c.SubjectWeights))
		for k, v := range c.SubjectWeights {
			out.SubjectWeights[k] = v
		}
	}
	return out
}

// UserProfile is the per-request description of a student.
// List fields are independent query fragments and are never concatenated.
type UserProfile struct {
	About               string              `json:"about"`
	Skills              []string            `json:"skills"`
	Interests           []string            `json:"interests"`
	CareerGoal          string              `json:"career_goal"`
	PreferredFields     []string            `json:"preferred_fields"`
	Dislikes            []string            `json:"dislikes"`
	GPA                 *float64            `json:"gpa,omitempty"`
	Grades              map[Subject]float64 `json:"grades,omitempty"`
	PreferredJobSectors []string            `json:"preferred_job_sectors,omitempty"`
	PreferredDomains    []string            `json:"preferred_domains,omitempty"`
}

// Grade returns the reported grade for s, or DefaultGrade.
func (p *UserProfile) Grade(s Subject) float64 {
	if g, ok := p.Grades[s]; ok {
		return g
	}
	return DefaultGrade
}

// Float64 is a convenience for building optional numeric fields such as GPA.
func Float64(v float64) *float64 {
	return &v
}

// Recommendation is the projection of a ranked program returned to callers.
type Recommendation struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Domain              string  `json:"domain"`
	JobSectors          string  `json:"job_sectors"`
	StudyDurationYears  float64 `json:"study_duration_years"`
	MinHighschoolGPA    float64 `json:"min_highschool_gpa"`
	AutomationRiskScore float64 `json:"automation_risk_score"`
	Score               float64 `json:"score"`
	Description         string  `json:"description"`
	SkillsRequired      string  `json:"skills_required"`
}

// ScoredCandidate carries every scoring component for one eligible item.
type ScoredCandidate struct {
	Index            int          `json:"index"` // position in the catalog
	Item             *CatalogItem `json:"-"`
	Semantic         float64      `json:"semantic"`
	Lexical          float64      `json:"lexical"`
	TextScore        float64      `json:"text_score"`
	GradeScore       float64      `json:"grade_score"`
	NumericComponent float64      `json:"numeric_component"`
	Boost            float64      `json:"boost"`
	FinalScore       float64      `json:"final_score"`
}

// Recommendation projects the candidate, rounding the score to 3 decimals.
func (s *ScoredCandidate) Recommendation() Recommendation {
	return Recommendation{
		ID:                  s.Item.ID,
		Name:                s.Item.Name,
		Domain:              s.Item.Domain,
		JobSectors:          s.Item.JobSectors,
		StudyDurationYears:  s.Item.StudyDurationYears,
		MinHighschoolGPA:    s.Item.MinGPA,
		AutomationRiskScore: s.Item.AutomationRiskScore,
		Score:               RoundScore(s.FinalScore),
		Description:         s.Item.Description,
		SkillsRequired:      s.Item.Skills,
	}
}

// RoundScore rounds to 3 decimal places.
func RoundScore(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// IndexManifest records what a persisted catalog index was built from.
type IndexManifest struct {
	Model       string
	Fingerprint ID
	Items       int
	Dimensions  int
	BuiltAt     time.Time
}
