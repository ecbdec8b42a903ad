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

import "errors"

// Domain validation errors
var (
	// ErrInvalidCatalogItem indicates a CatalogItem failed validation.
	ErrInvalidCatalogItem = errors.New("invalid catalog item")

	// ErrInvalidProfile indicates a UserProfile failed validation.
	ErrInvalidProfile = errors.New("invalid user profile")

	// ErrEmptyItemID indicates the ID field is empty.
	ErrEmptyItemID = errors.New("item id cannot be empty")

	// ErrDuplicateItemID indicates two catalog items share an ID.
	ErrDuplicateItemID = errors.New("duplicate item id")

	// ErrUnknownSubject indicates a subject outside the fixed subject set.
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrNegativeValue indicates a numeric field that must be non-negative.
	ErrNegativeValue = errors.New("value cannot be negative")

	// ErrNotFinite indicates a NaN or infinite numeric field.
	ErrNotFinite = errors.New("value must be finite")

	// ErrGradeOutOfRange indicates a grade outside [0,100].
	ErrGradeOutOfRange = errors.New("grade must be between 0 and 100")
)
