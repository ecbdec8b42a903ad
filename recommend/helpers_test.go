package recommend

import (
	"context"
	"testing"

	"github.com/poiesic/pathway/ai/mock"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/index"
	"github.com/stretchr/testify/require"
)

func scenarioCatalog() []core.CatalogItem {
	return []core.CatalogItem{
		{
			ID:                  "cs",
			Name:                "Computer Science",
			Domain:              "Technology",
			Description:         "programming software engineering algorithms",
			Skills:              "programming",
			CareerPaths:         "software engineer",
			JobSectors:          "Tech",
			MinGPA:              70,
			StudyDurationYears:  4,
			AutomationRiskScore: 0.2,
			SubjectWeights: map[core.Subject]float64{
				core.SubjectMathematics: 0.8,
				core.SubjectPhysics:     0.5,
			},
		},
		{
			ID:                  "acc",
			Name:                "Accounting",
			Domain:              "Business",
			Description:         "accounting auditing accounting standards financial accounting",
			Skills:              "accounting",
			CareerPaths:         "accountant auditor",
			JobSectors:          "Finance, Banking",
			MinGPA:              60,
			StudyDurationYears:  4,
			AutomationRiskScore: 0.7,
			SubjectWeights: map[core.Subject]float64{
				core.SubjectMathematics: 0.6,
				core.SubjectEnglish:     0.4,
			},
		},
		{
			ID:                  "bio",
			Name:                "Biology",
			Domain:              "Science",
			Description:         "genetics cells lab research",
			JobSectors:          "Healthcare",
			MinGPA:              75,
			StudyDurationYears:  4,
			AutomationRiskScore: 0.3,
			SubjectWeights: map[core.Subject]float64{
				core.SubjectBiology:   0.9,
				core.SubjectChemistry: 0.6,
			},
		},
		{
			ID:                  "arts",
			Name:                "Fine Arts",
			Domain:              "Arts",
			Description:         "painting drawing sculpture",
			JobSectors:          "Media",
			MinGPA:              50,
			StudyDurationYears:  4,
			AutomationRiskScore: 0.4,
		},
	}
}

func scenarioProfile() *core.UserProfile {
	return &core.UserProfile{
		GPA: core.Float64(90),
		Grades: map[core.Subject]float64{
			core.SubjectPhysics:     95,
			core.SubjectMathematics: 92,
			core.SubjectChemistry:   88,
		},
		Skills:     []string{"programming"},
		CareerGoal: "software engineer",
		Dislikes:   []string{"accounting"},
	}
}

func buildIndex(t *testing.T, items []core.CatalogItem) (*index.CatalogIndex, *mock.BagOfWordsEmbedder) {
	t.Helper()
	embedder := mock.NewBagOfWordsEmbedder()
	idx, err := index.Build(context.Background(), items, embedder)
	require.NoError(t, err)
	return idx, embedder
}

func position(candidates []core.ScoredCandidate, id string) int {
	for i, c := range candidates {
		if c.Item.ID == id {
			return i
		}
	}
	return -1
}

func candidate(candidates []core.ScoredCandidate, id string) *core.ScoredCandidate {
	if i := position(candidates, id); i >= 0 {
		return &candidates[i]
	}
	return nil
}
