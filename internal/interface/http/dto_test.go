package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/internal/domain/entity"
)

func TestNumber_AcceptsNumbersAndNumericStrings(t *testing.T) {
	var v struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":8.5,"b":" 91 ","c":"","d":null}`), &v))
	assert.Equal(t, Number(8.5), v.A)
	assert.Equal(t, Number(91), v.B)
	assert.Equal(t, Number(0), v.C)
	assert.Equal(t, Number(0), v.D)

	err := json.Unmarshal([]byte(`{"a":"eight"}`), &v)
	var ute *json.UnmarshalTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "a", ute.Field)

	for _, s := range []string{"NaN", "nan", "Inf", "+Infinity", "-inf"} {
		err := json.Unmarshal([]byte(`{"a":"`+s+`"}`), &v)
		assert.ErrorAs(t, err, &ute, s)
	}
}

func TestToIdentity_FlattensOnlyOwnVariant(t *testing.T) {
	student := entity.NewStudent("s@x.io", "S", entity.StudentProfile{CGPA: 9.1, CurrentDegree: "Undergraduate"})
	student.AppliedScholarshipIDs = nil

	b, err := json.Marshal(toIdentity(student))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, 9.1, got["cgpa"])
	assert.Equal(t, "General", got["fieldOfStudy"])
	assert.Equal(t, []any{}, got["appliedScholarshipIds"])
	assert.NotContains(t, got, "organization")
	assert.NotContains(t, got, "employeeId")
}

func TestToScholarship_FormatsDeadline(t *testing.T) {
	sc := &entity.Scholarship{ID: "1", Name: "Merit", Deadline: time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)}
	out := toScholarship(sc)
	assert.Equal(t, "2030-06-01", out.Deadline)
	assert.Equal(t, []string{}, out.Eligibility)
}
