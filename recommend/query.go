package recommend

import (
	"strings"

	"github.com/poiesic/pathway/core"
)

// Query weights by profile field. Dislikes push similar programs down in
// the semantic channel.
const (
	WeightAbout           = 1.0
	WeightSkills          = 1.5
	WeightInterests       = 1.5
	WeightCareerGoal      = 1.7
	WeightPreferredFields = 1.2
	WeightDislikes        = -0.9
)

// QuerySource names the profile field a query came from.
type QuerySource string

const (
	SourceAbout           QuerySource = "about"
	SourceSkills          QuerySource = "skills"
	SourceInterests       QuerySource = "interests"
	SourceCareerGoal      QuerySource = "career_goal"
	SourcePreferredFields QuerySource = "preferred_fields"
	SourceDislikes        QuerySource = "dislikes"
)

// WeightedQuery is one query string with its semantic weight.
type WeightedQuery struct {
	Text   string
	Weight float64
	Source QuerySource
}

// BuildQueries expands a profile into queries in fixed order: about,
// skills, interests, career goal, preferred fields, dislikes. Strings are
// trimmed; empty ones are dropped. List entries stay separate queries.
func BuildQueries(profile *core.UserProfile) []WeightedQuery {
	if profile == nil {
		return nil
	}
	var queries []WeightedQuery
	add := func(text string, weight float64, source QuerySource) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		queries = append(queries, WeightedQuery{Text: text, Weight: weight, Source: source})
	}

	add(profile.About, WeightAbout, SourceAbout)
	for _, s := range profile.Skills {
		add(s, WeightSkills, SourceSkills)
	}
	for _, s := range profile.Interests {
		add(s, WeightInterests, SourceInterests)
	}
	add(profile.CareerGoal, WeightCareerGoal, SourceCareerGoal)
	for _, s := range profile.PreferredFields {
		add(s, WeightPreferredFields, SourcePreferredFields)
	}
	for _, s := range profile.Dislikes {
		add(s, WeightDislikes, SourceDislikes)
	}
	return queries
}

// QueryTexts returns the query strings without weights, for the lexical channel.
func QueryTexts(queries []WeightedQuery) []string {
	texts := make([]string, len(queries))
	for i, q := range queries {
		texts[i] = q.Text
	}
	return texts
}
