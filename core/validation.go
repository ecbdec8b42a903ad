// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"math"
)

// ValidateCatalogItem validates a CatalogItem according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - MinGPA, StudyDurationYears and AutomationRiskScore must be finite and >= 0
//   - SubjectWeights may only name known subjects and must be finite and >= 0
//
// NOT validated (defaulted instead):
//   - Text fields (empty is a valid value)
func ValidateCatalogItem(item *CatalogItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidCatalogItem)
	}

	if item.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogItem, ErrEmptyItemID)
	}

	numbers := []struct {
		name  string
		value float64
	}{
		{"min_highschool_gpa", item.MinGPA},
		{"study_duration_years", item.StudyDurationYears},
		{"automation_risk_score", item.AutomationRiskScore},
	}
	for _, n := range numbers {
		if err := validateNonNegative(n.value); err != nil {
			return fmt.Errorf("%w: %s of %q: %w", ErrInvalidCatalogItem, n.name, item.ID, err)
		}
	}

	for subject, weight := range item.SubjectWeights {
		if !IsKnownSubject(subject) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidCatalogItem, ErrUnknownSubject, subject)
		}
		if err := validateNonNegative(weight); err != nil {
			return fmt.Errorf("%w: weight for %s: %w", ErrInvalidCatalogItem, subject, err)
		}
	}

	return nil
}

// ValidateCatalog validates every item and checks that IDs are unique.
func ValidateCatalog(items []CatalogItem) error {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		if err := ValidateCatalogItem(&items[i]); err != nil {
			return err
		}
		if _, dup := seen[items[i].ID]; dup {
			return fmt.Errorf("%w: %w: %q", ErrInvalidCatalogItem, ErrDuplicateItemID, items[i].ID)
		}
		seen[items[i].ID] = struct{}{}
	}
	return nil
}

// ValidateProfile validates a UserProfile.
//
// Validation rules:
//   - GPA, when present, must be finite and >= 0
//   - Grades for known subjects must be within [0,100]; grades for other
//     subjects are not scored and not checked
func ValidateProfile(profile *UserProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	if profile.GPA != nil {
		if err := validateNonNegative(*profile.GPA); err != nil {
			return fmt.Errorf("%w: gpa: %w", ErrInvalidProfile, err)
		}
	}

	for subject, grade := range profile.Grades {
		if !IsKnownSubject(subject) {
			continue
		}
		if math.IsNaN(grade) || grade < 0 || grade > 100 {
			return fmt.Errorf("%w: %s: %w", ErrInvalidProfile, subject, ErrGradeOutOfRange)
		}
	}

	return nil
}

func validateNonNegative(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNotFinite
	}
	if v < 0 {
		return ErrNegativeValue
	}
	return nil
}
