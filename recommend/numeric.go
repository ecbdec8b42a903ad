package recommend

import (
	"strings"

	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/index"
)

// Boost per matching preference.
const (
	SectorBoost = 8.0
	DomainBoost = 6.0
)

// NumericScore is the non-text part of an item's score.
type NumericScore struct {
	Eligible         bool
	GradeScore       float64 // [0,1]
	NumericComponent float64 // [0,100], unscaled by gamma
	Boost            float64
}

// Eligible reports whether the profile passes the item's GPA gate.
// A missing GPA always passes; an equal GPA passes.
func Eligible(profile *core.UserProfile, item *core.CatalogItem) bool {
	return profile.GPA == nil || *profile.GPA >= item.MinGPA
}

// GradeScore is the subject-weighted mean of the profile's grades scaled
// to [0,1], or the plain mean when the item weights no subject.
// Unreported grades count as core.DefaultGrade.
func GradeScore(profile *core.UserProfile, item *core.CatalogItem) float64 {
	var weighted, weightSum, plain float64
	for _, s := range core.Subjects {
		g := profile.Grade(s) / 100
		w := item.Weight(s)
		weighted += g * w
		weightSum += w
		plain += g
	}
	if weightSum > 0 {
		return weighted / weightSum
	}
	return plain / float64(len(core.Subjects))
}

// Boost adds SectorBoost for every preferred job sector contained in the
// item's job sectors and DomainBoost for every preferred domain contained
// in its domain. Matching ignores case; blank preferences never match.
func Boost(profile *core.UserProfile, item *core.CatalogItem) float64 {
	boost := 0.0
	if len(profile.PreferredJobSectors) > 0 {
		sectors := index.Fold(item.JobSectors)
		for _, pref := range profile.PreferredJobSectors {
			if contains(sectors, pref) {
				boost += SectorBoost
			}
		}
	}
	if len(profile.PreferredDomains) > 0 {
		domain := index.Fold(item.Domain)
		for _, pref := range profile.PreferredDomains {
			if contains(domain, pref) {
				boost += DomainBoost
			}
		}
	}
	return boost
}

func contains(folded, pref string) bool {
	pref = strings.TrimSpace(pref)
	if pref == "" {
		return false
	}
	return strings.Contains(folded, index.Fold(pref))
}

// ScoreNumeric scores catalog item i. Ineligible items carry no other values.
func ScoreNumeric(profile *core.UserProfile, idx *index.CatalogIndex, i int) NumericScore {
	item := idx.Item(i)
	if !Eligible(profile, item) {
		return NumericScore{}
	}
	return NumericScore{
		Eligible:         true,
		GradeScore:       GradeScore(profile, item),
		NumericComponent: idx.NumericComponent(i),
		Boost:            Boost(profile, item),
	}
}

// ScoreAll scores every catalog item in order.
func ScoreAll(profile *core.UserProfile, idx *index.CatalogIndex) []NumericScore {
	scores := make([]NumericScore, idx.Len())
	for i := range scores {
		scores[i] = ScoreNumeric(profile, idx, i)
	}
	return scores
}
