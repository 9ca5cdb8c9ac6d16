package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStudentCSV(t *testing.T) {
	csvData := `registration_no,name,email,department_id,batch_id,section_id,semester
R2201,Asha Rao,asha@ced.alliance.edu.in,1,2,3,4
R2202,Vikram Nair,vikram@ced.alliance.edu.in,1,2,3,4
`
	students, badLine, err := parseStudentCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Zero(t, badLine)
	require.Len(t, students, 2)
	assert.Equal(t, "R2201", students[0].RegistrationNo)
	assert.Equal(t, 3, students[0].SectionID)
	assert.Equal(t, 4, students[1].Semester)
}

func TestParseStudentCSVBadHeader(t *testing.T) {
	csvData := `reg,name,email,department_id,batch_id,section_id,semester
R2201,Asha Rao,asha@ced.alliance.edu.in,1,2,3,4
`
	_, badLine, err := parseStudentCSV(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Equal(t, 1, badLine)
}

func TestParseStudentCSVBadRow(t *testing.T) {
	csvData := `registration_no,name,email,department_id,batch_id,section_id,semester
R2201,Asha Rao,asha@ced.alliance.edu.in,1,2,3,4
R2202,Vikram Nair,vikram@ced.alliance.edu.in,not-a-number,2,3,4
`
	_, badLine, err := parseStudentCSV(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Equal(t, 3, badLine)
}

func TestParseStudentCSVEmpty(t *testing.T) {
	students, _, err := parseStudentCSV(strings.NewReader("registration_no,name,email,department_id,batch_id,section_id,semester\n"))
	require.NoError(t, err)
	assert.Empty(t, students)
}
