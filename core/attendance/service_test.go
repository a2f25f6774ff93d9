package attendance_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/course"
	"github.com/trezcool/markaz/storage/database/dbtest"
	sqlxrepos "github.com/trezcool/markaz/storage/database/sqlx"
)

func TestService(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(db))
	svc := attendance.NewService(sqlxrepos.NewAttendanceRepository(db), courseSvc)

	owner := dbtest.CreateUser(t, db, "amina", "s3cr3tpwd")
	other := dbtest.CreateUser(t, db, "bilal", "s3cr3tpwd")

	// price 100, three students, first week of 2025
	crs, err := courseSvc.Create(ctx, owner.ID, course.NewCourse{Name: "Math", Price: 100})
	require.NoError(t, err)
	var students []course.Student
	for _, name := range []string{"A", "B", "C"} {
		std, err := courseSvc.AddStudent(ctx, owner.ID, course.NewStudent{CourseID: crs.ID, Name: name})
		require.NoError(t, err)
		students = append(students, std)
	}
	dates, err := courseSvc.AddDateRange(ctx, owner.ID, course.DateRange{CourseID: crs.ID, Start: "2025-01-01", End: "2025-01-07"})
	require.NoError(t, err)
	require.Len(t, dates, 6)

	a := students[0]
	for i, date := range dates {
		status := attendance.Present
		if i == len(dates)-1 {
			status = attendance.Absent
		}
		require.NoError(t, svc.Mark(ctx, owner.ID, attendance.Mark{StudentID: a.ID, DateID: date.ID, Status: status}))
	}

	sheet, roster, calendar, err := svc.Sheet(ctx, owner.ID, crs.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 3)
	assert.Len(t, calendar, 6)
	assert.Equal(t, 83, sheet.Stats[a.ID])
	assert.Equal(t, 100, sheet.Stats[students[1].ID])
	assert.Equal(t, attendance.Absent, sheet.Mark(a.ID, dates[5].ID))

	t.Run("upsert keeps one row with the latest status", func(t *testing.T) {
		m := attendance.Mark{StudentID: students[1].ID, DateID: dates[0].ID, Status: attendance.Present}
		require.NoError(t, svc.Mark(ctx, owner.ID, m))
		m.Status = attendance.Absent
		require.NoError(t, svc.Mark(ctx, owner.ID, m))

		var rows []string
		require.NoError(t, db.Select(&rows, `SELECT status FROM attendance WHERE student_id = ? AND date_id = ?`, m.StudentID, m.DateID))
		assert.Equal(t, []string{"absent"}, rows)

		m.Status = attendance.Unset
		require.NoError(t, svc.Mark(ctx, owner.ID, m))
		sheet, _, _, err := svc.Sheet(ctx, owner.ID, crs.ID)
		require.NoError(t, err)
		assert.Equal(t, attendance.Unset, sheet.Mark(m.StudentID, m.DateID))
		assert.Equal(t, 100, sheet.Stats[m.StudentID])
	})

	t.Run("deleting a date drops its marks", func(t *testing.T) {
		require.NoError(t, courseSvc.DeleteDate(ctx, owner.ID, dates[5].ID))
		sheet, _, _, err := svc.Sheet(ctx, owner.ID, crs.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, sheet.Stats[a.ID])

		var n int
		require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM attendance WHERE date_id = ?`, dates[5].ID))
		assert.Zero(t, n)
	})

	t.Run("ownership", func(t *testing.T) {
		err := svc.Mark(ctx, other.ID, attendance.Mark{StudentID: a.ID, DateID: dates[0].ID, Status: attendance.Present})
		assert.Equal(t, course.ErrNotFound, err)
		_, _, _, err = svc.Sheet(ctx, other.ID, crs.ID)
		assert.Equal(t, course.ErrNotFound, err)
	})

	t.Run("unknown status", func(t *testing.T) {
		err := svc.Mark(ctx, owner.ID, attendance.Mark{StudentID: a.ID, DateID: dates[0].ID, Status: "late"})
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "status", vErr.Fields[0].Field)
		assert.Equal(t, attendance.Present, mustSheet(t, svc, owner.ID, crs.ID).Mark(a.ID, dates[0].ID))
	})

	t.Run("student and date of different courses", func(t *testing.T) {
		physics := dbtest.CreateCourse(t, db, owner.ID, "Physics", 0)
		pd := dbtest.CreateDates(t, db, physics.ID, "01-Jan")
		err := svc.Mark(ctx, owner.ID, attendance.Mark{StudentID: a.ID, DateID: pd[0].ID, Status: attendance.Present})
		assert.Equal(t, attendance.ErrCourseMismatch, err)
	})
}

func mustSheet(t *testing.T, svc *attendance.Service, ownerID, courseID int) attendance.Sheet {
	t.Helper()
	sheet, _, _, err := svc.Sheet(context.Background(), ownerID, courseID)
	require.NoError(t, err)
	return sheet
}
