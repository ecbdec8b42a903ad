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


package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/pathway/core"
)

// fieldWriter is implemented by both the sizing and the writing pass so a
// record layout is declared once.
type fieldWriter interface {
	String(v string)
	Float64(v float64)
	Float32(v float32)
	Uint64(v uint64)
	Int64(v int64)
}

type sizer struct {
	n int
}

func (s *sizer) String(v string)   { s.n += ord.String.Size(v) }
func (s *sizer) Float64(v float64) { s.n += raw.Float64.Size(v) }
func (s *sizer) Float32(v float32) { s.n += raw.Float32.Size(v) }
func (s *sizer) Uint64(v uint64)   { s.n += varint.Uint64.Size(v) }
func (s *sizer) Int64(v int64)     { s.n += varint.Int64.Size(v) }

type writer struct {
	bs []byte
	n  int
}

func (w *writer) String(v string)   { w.n += ord.String.Marshal(v, w.bs[w.n:]) }
func (w *writer) Float64(v float64) { w.n += raw.Float64.Marshal(v, w.bs[w.n:]) }
func (w *writer) Float32(v float32) { w.n += raw.Float32.Marshal(v, w.bs[w.n:]) }
func (w *writer) Uint64(v uint64)   { w.n += varint.Uint64.Marshal(v, w.bs[w.n:]) }
func (w *writer) Int64(v int64)     { w.n += varint.Int64.Marshal(v, w.bs[w.n:]) }

// reader decodes fields in order and remembers the first error.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) String() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	r.fail(err)
	return v
}

func (r *reader) Float64() float64 {
	if r.err != nil {
		return 0
	}
	v, n, err := raw.Float64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.fail(err)
	return v
}

func (r *reader) Float32() float32 {
	if r.err != nil {
		return 0
	}
	v, n, err := raw.Float32.Unmarshal(r.bs[r.n:])
	r.n += n
	r.fail(err)
	return v
}

func (r *reader) Uint64() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.fail(err)
	return v
}

func (r *reader) Int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.fail(err)
	return v
}

// Length reads a collection length and rejects values that cannot fit in
// the remaining bytes, given each element takes at least minElem bytes.
func (r *reader) Length(minElem int) int {
	l := r.Uint64()
	if r.err != nil {
		return 0
	}
	remaining := uint64(len(r.bs) - r.n)
	if l*uint64(minElem) > remaining {
		r.fail(ErrTruncatedData)
		return 0
	}
	return int(l)
}

func (r *reader) finish(what string) error {
	if r.err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, what, r.err)
	}
	if r.n != len(r.bs) {
		return fmt.Errorf("%w: %s: %d trailing bytes", ErrSerializationFailed, what, len(r.bs)-r.n)
	}
	return nil
}

func encode(write func(fieldWriter)) []byte {
	s := &sizer{}
	write(s)
	w := &writer{bs: make([]byte, s.n)}
	write(w)
	return w.bs
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	return encode(func(w fieldWriter) { w.Uint64(uint64(id)) })
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	r := &reader{bs: data}
	id := core.ID(r.Uint64())
	return id, r.finish("id")
}

func writeItem(w fieldWriter, item *core.CatalogItem) {
	w.String(item.ID)
	w.String(item.Name)
	w.String(item.Domain)
	w.String(item.Description)
	w.String(item.CoreSubjects)
	w.String(item.InterestKeywords)
	w.String(item.Skills)
	w.String(item.AcquiredSkills)
	w.String(item.CareerPaths)
	w.String(item.JobSectors)
	w.String(item.TrackRequirement)
	w.Float64(item.MinGPA)
	w.Float64(item.StudyDurationYears)
	w.Float64(item.AutomationRiskScore)

	// Sorted for a stable encoding.
	subjects := make([]core.Subject, 0, len(item.SubjectWeights))
	for s := range item.SubjectWeights {
		subjects = append(subjects, s)
	}
	slices.Sort(subjects)
	w.Uint64(uint64(len(subjects)))
	for _, s := range subjects {
		w.String(string(s))
		w.Float64(item.SubjectWeights[s])
	}
}

// MarshalCatalogItem serializes a CatalogItem to bytes.
func MarshalCatalogItem(item *core.CatalogItem) []byte {
	return encode(func(w fieldWriter) { writeItem(w, item) })
}

// UnmarshalCatalogItem deserializes a CatalogItem from bytes.
func UnmarshalCatalogItem(data []byte) (*core.CatalogItem, error) {
	r := &reader{bs: data}
	item := &core.CatalogItem{
		ID:                  r.String(),
		Name:                r.String(),
		Domain:              r.String(),
		Description:         r.String(),
		CoreSubjects:        r.String(),
		InterestKeywords:    r.String(),
		Skills:              r.String(),
		AcquiredSkills:      r.String(),
		CareerPaths:         r.String(),
		JobSectors:          r.String(),
		TrackRequirement:    r.String(),
		MinGPA:              r.Float64(),
		StudyDurationYears:  r.Float64(),
		AutomationRiskScore: r.Float64(),
	}
	// one length byte + 8 float bytes per weight at minimum
	if count := r.Length(9); count > 0 {
		item.SubjectWeights = make(map[core.Subject]float64, count)
		for i := 0; i < count && r.err == nil; i++ {
			s := core.Subject(r.String())
			item.SubjectWeights[s] = r.Float64()
		}
	}
	if err := r.finish("catalog item"); err != nil {
		return nil, err
	}
	return item, nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vector []float32) []byte {
	return encode(func(w fieldWriter) {
		w.Uint64(uint64(len(vector)))
		for _, v := range vector {
			w.Float32(v)
		}
	})
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	r := &reader{bs: data}
	count := r.Length(4)
	vector := make([]float32, count)
	for i := 0; i < count && r.err == nil; i++ {
		vector[i] = r.Float32()
	}
	if err := r.finish("vector"); err != nil {
		return nil, err
	}
	return vector, nil
}

// MarshalManifest serializes an IndexManifest to bytes.
// BuiltAt is stored with microsecond precision.
func MarshalManifest(manifest *core.IndexManifest) []byte {
	return encode(func(w fieldWriter) {
		w.String(manifest.Model)
		w.Uint64(uint64(manifest.Fingerprint))
		w.Uint64(uint64(manifest.Items))
		w.Uint64(uint64(manifest.Dimensions))
		w.Int64(manifest.BuiltAt.UnixMicro())
	})
}

// UnmarshalManifest deserializes an IndexManifest from bytes.
func UnmarshalManifest(data []byte) (*core.IndexManifest, error) {
	r := &reader{bs: data}
	manifest := &core.IndexManifest{
		Model:       r.String(),
		Fingerprint: core.ID(r.Uint64()),
		Items:       int(r.Uint64()),
		Dimensions:  int(r.Uint64()),
		BuiltAt:     time.UnixMicro(r.Int64()).UTC(),
	}
	if err := r.finish("manifest"); err != nil {
		return nil, err
	}
	return manifest, nil
}
