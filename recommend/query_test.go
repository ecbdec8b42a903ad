package recommend

import (
	"testing"

	"github.com/poiesic/pathway/core"
	"github.com/stretchr/testify/assert"
)

func TestBuildQueries_OrderAndWeights(t *testing.T) {
	profile := &core.UserProfile{
		About:           "I like building things",
		Skills:          []string{"programming", "math"},
		Interests:       []string{"robots"},
		CareerGoal:      "engineer",
		PreferredFields: []string{"technology"},
		Dislikes:        []string{"accounting"},
	}

	queries := BuildQueries(profile)

	expected := []WeightedQuery{
		{Text: "I like building things", Weight: 1.0, Source: SourceAbout},
		{Text: "programming", Weight: 1.5, Source: SourceSkills},
		{Text: "math", Weight: 1.5, Source: SourceSkills},
		{Text: "robots", Weight: 1.5, Source: SourceInterests},
		{Text: "engineer", Weight: 1.7, Source: SourceCareerGoal},
		{Text: "technology", Weight: 1.2, Source: SourcePreferredFields},
		{Text: "accounting", Weight: -0.9, Source: SourceDislikes},
	}
	assert.Equal(t, expected, queries)
	assert.Equal(t,
		[]string{"I like building things", "programming", "math", "robots", "engineer", "technology", "accounting"},
		QueryTexts(queries))
}

func TestBuildQueries_DropsBlankStrings(t *testing.T) {
	profile := &core.UserProfile{
		About:      "   ",
		Skills:     []string{"", " programming ", "\t"},
		CareerGoal: "",
		Dislikes:   []string{" "},
	}

	queries := BuildQueries(profile)

	assert.Equal(t, []WeightedQuery{{Text: "programming", Weight: WeightSkills, Source: SourceSkills}}, queries)
}

func TestBuildQueries_Empty(t *testing.T) {
	assert.Empty(t, BuildQueries(&core.UserProfile{}))
	assert.Empty(t, BuildQueries(nil))
	assert.Empty(t, QueryTexts(nil))
}
