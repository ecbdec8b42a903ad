package main

import (
	"strings"
	"testing"

	"github.com/poiesic/pathway/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCatalogJSON(t *testing.T) {
	path := writeTestFile(t, "catalog.json", `[
	  {"major_id": "eng", "name": "Engineering", "min_highschool_gpa": "75.5",
	   "study_duration_years": null, "automation_risk_score": "n/a",
	   "mathematics": 0.9, "subject_weights": {"Physics": 0.6}},
	  {"id": "med", "major_id": "ignored", "name": "Medicine", "min_highschool_gpa": 90}
	]`)

	items, err := readCatalog(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	eng := items[0]
	assert.Equal(t, "eng", eng.ID)
	assert.Equal(t, 75.5, eng.MinGPA)
	assert.Zero(t, eng.StudyDurationYears)
	assert.Zero(t, eng.AutomationRiskScore)
	assert.Equal(t, map[core.Subject]float64{
		core.SubjectMathematics: 0.9,
		core.SubjectPhysics:     0.6,
	}, eng.SubjectWeights)

	med := items[1]
	assert.Equal(t, "med", med.ID)
	assert.Equal(t, 90.0, med.MinGPA)
	assert.Nil(t, med.SubjectWeights)
}

func TestReadCatalogCSV(t *testing.T) {
	path := writeTestFile(t, "majors.csv", "\ufeffMajor_ID,Name,Domain,Min_Highschool_GPA,Mathematics,Holy_Quran,subject_weights\n"+
		`cs,Computer Science,Technology,80,0.7,0.2,"{""physics"": 0.4}"`+"\n"+
		"lit,Literature,Humanities,,,,\n")

	items, err := readCatalog(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	cs := items[0]
	assert.Equal(t, "cs", cs.ID)
	assert.Equal(t, "Computer Science", cs.Name)
	assert.Equal(t, "Technology", cs.Domain)
	assert.Equal(t, 80.0, cs.MinGPA)
	assert.Empty(t, cs.Description, "missing text columns are empty")
	assert.Equal(t, map[core.Subject]float64{
		core.SubjectMathematics: 0.7,
		core.SubjectPhysics:     0.4,
	}, cs.SubjectWeights, "columns outside the subject set are ignored")

	lit := items[1]
	assert.Equal(t, "lit", lit.ID)
	assert.Zero(t, lit.MinGPA)
	assert.Nil(t, lit.SubjectWeights)
}

func TestReadCatalogNumericIDs(t *testing.T) {
	path := writeTestFile(t, "catalog.json", `[
	  {"major_id": 101, "name": "Engineering"},
	  {"id": 7, "major_id": 102, "name": "Medicine"},
	  {"id": null, "major_id": "103", "name": "Law"}
	]`)

	items, err := readCatalog(path)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "101", items[0].ID)
	assert.Equal(t, "7", items[1].ID)
	assert.Equal(t, "103", items[2].ID)

	_, err = readCatalog(writeTestFile(t, "bad.json", `[{"major_id": true}]`))
	require.Error(t, err)
}

func TestReadCatalogErrors(t *testing.T) {
	t.Run("unknown subject", func(t *testing.T) {
		path := writeTestFile(t, "catalog.json", `[{"id": "x", "subject_weights": {"astrology": 1}}]`)
		_, err := readCatalog(path)
		require.ErrorIs(t, err, core.ErrUnknownSubject)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeTestFile(t, "catalog.json", `{"id": "x"`)
		_, err := readCatalog(path)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readCatalog("does-not-exist.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open catalog")
	})

	t.Run("empty csv", func(t *testing.T) {
		path := writeTestFile(t, "empty.csv", "")
		items, err := readCatalog(path)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestReadProfile(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := writeTestFile(t, "profile.json", profileJSON)
		profile, err := readProfile(path, nil)
		require.NoError(t, err)
		require.NotNil(t, profile.GPA)
		assert.Equal(t, 80.0, *profile.GPA)
		assert.Equal(t, []string{"programming"}, profile.Skills)
		assert.Equal(t, 95.0, profile.Grades[core.SubjectMathematics])
	})

	t.Run("from stdin", func(t *testing.T) {
		profile, err := readProfile("-", strings.NewReader(`{"career_goal": "nurse"}`))
		require.NoError(t, err)
		assert.Equal(t, "nurse", profile.CareerGoal)
		assert.Nil(t, profile.GPA)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := readProfile("-", strings.NewReader(`not json`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode profile")
	})
}
