package recommend

import (
	"testing"

	"github.com/poiesic/pathway/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalScore(t *testing.T) {
	params := Params{TopN: 5, Alpha: 0.6, Beta: 0.35, Gamma: 0.1}
	numeric := NumericScore{Eligible: true, GradeScore: 0.8, NumericComponent: 40, Boost: 8}

	// 0.65*50 + 0.35*80 + 0.1*40 + 8
	assert.InDelta(t, 72.5, FinalScore(50, numeric, params), 1e-9)
}

func rankFixture(t *testing.T) (*FusionResult, []NumericScore) {
	t.Helper()
	fusion := &FusionResult{
		Semantic: []float64{10, 90, 50, 90},
		Lexical:  []float64{10, 90, 50, 90},
		Text:     []float64{10, 90, 50, 90},
	}
	numeric := []NumericScore{
		{Eligible: true, GradeScore: 0.5},
		{Eligible: true, GradeScore: 0.5},
		{Eligible: false},
		{Eligible: true, GradeScore: 0.5},
	}
	return fusion, numeric
}

func TestRank_OrderAndTies(t *testing.T) {
	idx, _ := buildIndex(t, scenarioCatalog())
	fusion, numeric := rankFixture(t)

	ranked := Rank(idx, fusion, numeric, DefaultParams())

	require.Len(t, ranked, 3, "ineligible items are excluded")
	assert.Equal(t, []int{1, 3, 0}, []int{ranked[0].Index, ranked[1].Index, ranked[2].Index},
		"equal scores keep catalog order")
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].FinalScore, ranked[i].FinalScore)
	}
	assert.Same(t, idx.Item(1), ranked[0].Item)
	assert.Equal(t, 90.0, ranked[0].TextScore)
}

func TestRank_TopN(t *testing.T) {
	idx, _ := buildIndex(t, scenarioCatalog())
	fusion, numeric := rankFixture(t)

	params := DefaultParams()
	params.TopN = 1
	ranked := Rank(idx, fusion, numeric, params)
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].Index)

	params.TopN = 0
	assert.Empty(t, Rank(idx, fusion, numeric, params))

	params.TopN = 100
	assert.Len(t, Rank(idx, fusion, numeric, params), 3)
}

func TestProject(t *testing.T) {
	item := &core.CatalogItem{
		ID:                  "cs",
		Name:                "Computer Science",
		Domain:              "Technology",
		JobSectors:          "Tech",
		Description:         "programs",
		Skills:              "programming",
		MinGPA:              70,
		StudyDurationYears:  4,
		AutomationRiskScore: 0.2,
	}

	recs := Project([]core.ScoredCandidate{{Item: item, FinalScore: 81.23456}})

	require.Len(t, recs, 1)
	assert.Equal(t, core.Recommendation{
		ID:                  "cs",
		Name:                "Computer Science",
		Domain:              "Technology",
		JobSectors:          "Tech",
		StudyDurationYears:  4,
		MinHighschoolGPA:    70,
		AutomationRiskScore: 0.2,
		Score:               81.235,
		Description:         "programs",
		SkillsRequired:      "programming",
	}, recs[0])
	assert.Empty(t, Project(nil))
}
