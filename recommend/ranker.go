package recommend

import (
	"cmp"
	"slices"

	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/index"
)

// FinalScore combines the score parts of one item.
func FinalScore(text float64, numeric NumericScore, params Params) float64 {
	return (1-params.Beta)*text +
		params.Beta*(numeric.GradeScore*100) +
		params.Gamma*numeric.NumericComponent +
		numeric.Boost
}

// Rank scores eligible items and returns the best params.TopN by
// descending final score. Equal scores keep catalog order.
func Rank(idx *index.CatalogIndex, fusion *FusionResult, numeric []NumericScore, params Params) []core.ScoredCandidate {
	candidates := make([]core.ScoredCandidate, 0, len(numeric))
	for i, ns := range numeric {
		if !ns.Eligible {
			continue
		}
		candidates = append(candidates, core.ScoredCandidate{
			Index:            i,
			Item:             idx.Item(i),
			Semantic:         fusion.Semantic[i],
			Lexical:          fusion.Lexical[i],
			TextScore:        fusion.Text[i],
			GradeScore:       ns.GradeScore,
			NumericComponent: ns.NumericComponent,
			Boost:            ns.Boost,
			FinalScore:       FinalScore(fusion.Text[i], ns, params),
		})
	}

	slices.SortStableFunc(candidates, func(a, b core.ScoredCandidate) int {
		return cmp.Compare(b.FinalScore, a.FinalScore)
	})

	if len(candidates) > params.TopN {
		candidates = candidates[:params.TopN]
	}
	return candidates
}

// Project converts ranked candidates into caller-facing results.
func Project(candidates []core.ScoredCandidate) []core.Recommendation {
	out := make([]core.Recommendation, len(candidates))
	for i := range candidates {
		out[i] = candidates[i].Recommendation()
	}
	return out
}
