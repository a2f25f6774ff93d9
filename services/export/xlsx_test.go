package exportsvc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/course"
)

func TestAttendanceWorkbook(t *testing.T) {
	crs := course.Course{ID: 1, Name: "Math: Grade 9"}
	students := []course.Student{
		{ID: 1, Name: "Yusuf", Phone: null.StringFrom("+998901234567"), TotalPaid: 150},
		{ID: 2, Name: "Zahra"},
	}
	dates := []course.ClassDate{{ID: 10, Label: "01-Jan"}, {ID: 11, Label: "02-Jan"}}
	sheet := attendance.BuildSheet([]int{1, 2}, []int{10, 11}, []attendance.Record{
		{StudentID: 1, DateID: 10, Status: attendance.Present},
		{StudentID: 1, DateID: 11, Status: attendance.Absent},
	})

	var buf bytes.Buffer
	require.NoError(t, AttendanceWorkbook(&buf, crs, students, dates, sheet))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Math_ Grade 9"}, f.GetSheetList())
	rows, err := f.GetRows("Math_ Grade 9")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Student", "Phone", "01-Jan", "02-Jan", "%", "Paid"}, rows[0])
	assert.Equal(t, []string{"Yusuf", "+998901234567", "+", "-", "50", "150"}, rows[1])
	assert.Equal(t, []string{"Zahra", "", "", "", "100", "0"}, rows[2])
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Math", "Math"},
		{"  a/b\\c?d*e[f]g:h  ", "a_b_c_d_e_f_g_h"},
		{"'quoted'", "quoted"},
		{"", "Attendance"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SheetName(tt.in), "SheetName(%q)", tt.in)
	}
	assert.Equal(t, "Math_Grade_9_attendance.xlsx", FileName(course.Course{Name: "Math Grade 9"}))
}
