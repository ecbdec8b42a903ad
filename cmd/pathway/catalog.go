package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/poiesic/pathway/core"
)

// number decodes a JSON number, a numeric string or null. Values that do
// not parse become zero, matching how spreadsheet exports are coerced.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = number(parseNumber(s))
		return nil
	}
	if string(data) == "null" {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// identifier decodes an id given as a JSON string or number. Spreadsheet
// exports often carry integer ids.
type identifier string

func (id *identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case string(data) == "null":
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = identifier(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id must be a string or number: %w", err)
		}
		*id = identifier(n.String())
	}
	return nil
}

// subjectWeights decodes an object of subject weights, or the same object
// encoded as a string as found in a CSV cell.
type subjectWeights map[string]number

func (w *subjectWeights) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	if len(data) == 0 || string(data) == "null" {
		*w = nil
		return nil
	}
	var m map[string]number
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("subject_weights: %w", err)
	}
	*w = m
	return nil
}

// catalogRecord is one program as found in an import file. Subject weights
// may be nested under subject_weights or given as top-level columns named
// after the subject.
type catalogRecord struct {
	ID               identifier     `json:"id"`
	MajorID          identifier     `json:"major_id"`
	Name             string         `json:"name"`
	Domain           string         `json:"domain"`
	Description      string         `json:"description"`
	CoreSubjects     string         `json:"core_subjects"`
	InterestKeywords string         `json:"interests_keywords"`
	Skills           string         `json:"skills"`
	AcquiredSkills   string         `json:"acquired_skills"`
	CareerPaths      string         `json:"career_paths"`
	JobSectors       string         `json:"job_sectors"`
	TrackRequirement string         `json:"track_requirement"`
	MinGPA           number         `json:"min_highschool_gpa"`
	StudyDuration    number         `json:"study_duration_years"`
	AutomationRisk   number         `json:"automation_risk_score"`
	SubjectWeights   subjectWeights `json:"subject_weights"`

	Arabic      number `json:"arabic_language"`
	English     number `json:"english_language"`
	Mathematics number `json:"mathematics"`
	Physics     number `json:"physics"`
	Chemistry   number `json:"chemistry"`
	Biology     number `json:"biology"`
}

func (r *catalogRecord) item() (core.CatalogItem, error) {
	id := strings.TrimSpace(string(r.ID))
	if id == "" {
		id = strings.TrimSpace(string(r.MajorID))
	}
	item := core.CatalogItem{
		ID:                  id,
		Name:                r.Name,
		Domain:              r.Domain,
		Description:         r.Description,
		CoreSubjects:        r.CoreSubjects,
		InterestKeywords:    r.InterestKeywords,
		Skills:              r.Skills,
		AcquiredSkills:      r.AcquiredSkills,
		CareerPaths:         r.CareerPaths,
		JobSectors:          r.JobSectors,
		TrackRequirement:    r.TrackRequirement,
		MinGPA:              float64(r.MinGPA),
		StudyDurationYears:  float64(r.StudyDuration),
		AutomationRiskScore: float64(r.AutomationRisk),
	}

	weights := map[core.Subject]float64{}
	flat := map[core.Subject]number{
		core.SubjectArabic:      r.Arabic,
		core.SubjectEnglish:     r.English,
		core.SubjectMathematics: r.Mathematics,
		core.SubjectPhysics:     r.Physics,
		core.SubjectChemistry:   r.Chemistry,
		core.SubjectBiology:     r.Biology,
	}
	for subject, w := range flat {
		if w != 0 {
			weights[subject] = float64(w)
		}
	}
	for name, w := range r.SubjectWeights {
		subject := core.Subject(strings.ToLower(strings.TrimSpace(name)))
		if !core.IsKnownSubject(subject) {
			return core.CatalogItem{}, fmt.Errorf("item %q: %w: %q", id, core.ErrUnknownSubject, name)
		}
		if w != 0 {
			weights[subject] = float64(w)
		}
	}
	if len(weights) > 0 {
		item.SubjectWeights = weights
	}
	return item, nil
}

// readCatalog loads catalog items from a .json array or a .csv file with a
// header row.
func readCatalog(path string) ([]core.CatalogItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var records []catalogRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = decodeCatalogCSV(f)
	default:
		records, err = decodeCatalogJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	items := make([]core.CatalogItem, 0, len(records))
	for i := range records {
		item, err := records[i].item()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeCatalogJSON(r io.Reader) ([]catalogRecord, error) {
	var records []catalogRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// decodeCatalogCSV converts each row into a JSON object keyed by header
// name and decodes it like a JSON record, so both formats share coercion.
// Columns absent from the header stay empty.
func decodeCatalogCSV(r io.Reader) ([]catalogRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []catalogRecord{}, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	var records []catalogRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) && name != "" {
				fields[name] = row[i]
			}
		}
		data, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		var rec catalogRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if records == nil {
		records = []catalogRecord{}
	}
	return records, nil
}

// readProfile decodes a profile from path, or from stdin when path is "-".
func readProfile(path string, stdin io.Reader) (*core.UserProfile, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open profile: %w", err)
		}
		defer f.Close()
		r = f
	}

	var profile core.UserProfile
	if err := json.NewDecoder(r).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}
