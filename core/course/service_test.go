package course_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core/course"
	"github.com/trezcool/markaz/storage/database/dbtest"
	sqlxrepos "github.com/trezcool/markaz/storage/database/sqlx"
)

func setup(t *testing.T) (*sqlx.DB, *course.Service) {
	db := dbtest.Open(t)
	return db, course.NewService(sqlxrepos.NewCourseRepository(db))
}

func TestService_courses(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, db, "amina", "s3cr3tpwd")
	other := dbtest.CreateUser(t, db, "bilal", "s3cr3tpwd")

	math, err := svc.Create(ctx, owner.ID, course.NewCourse{Name: "Math", Price: 100})
	require.NoError(t, err)
	physics, err := svc.Create(ctx, owner.ID, course.NewCourse{Name: "Physics"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, physics.Price)
	_, err = svc.Create(ctx, other.ID, course.NewCourse{Name: "Chemistry"})
	require.NoError(t, err)

	courses, err := svc.ListActive(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []course.Course{math, physics}, courses)

	t.Run("archive hides but keeps", func(t *testing.T) {
		require.NoError(t, svc.Archive(ctx, owner.ID, physics.ID))

		courses, err := svc.ListActive(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, []course.Course{math}, courses)

		got, err := svc.Get(ctx, owner.ID, physics.ID)
		require.NoError(t, err)
		assert.True(t, got.IsArchived)
	})

	t.Run("update", func(t *testing.T) {
		got, err := svc.Update(ctx, owner.ID, course.UpdateCourse{ID: math.ID, Name: "Algebra", Price: 120})
		require.NoError(t, err)
		assert.Equal(t, "Algebra", got.Name)

		got, err = svc.Get(ctx, owner.ID, math.ID)
		require.NoError(t, err)
		assert.Equal(t, 120.0, got.Price)
	})

	t.Run("other users get not found", func(t *testing.T) {
		_, err := svc.Get(ctx, other.ID, math.ID)
		assert.Equal(t, course.ErrNotFound, err)
		_, err = svc.Update(ctx, other.ID, course.UpdateCourse{ID: math.ID, Name: "Hijacked"})
		assert.Equal(t, course.ErrNotFound, err)
		assert.Equal(t, course.ErrNotFound, svc.Archive(ctx, other.ID, math.ID))
		assert.Equal(t, course.ErrNotFound, svc.Delete(ctx, other.ID, math.ID))
		_, err = svc.AddStudent(ctx, other.ID, course.NewStudent{CourseID: math.ID, Name: "Intruder"})
		assert.Equal(t, course.ErrNotFound, err)
		_, err = svc.AddDateRange(ctx, other.ID, course.DateRange{CourseID: math.ID, Start: "2025-01-01", End: "2025-01-02"})
		assert.Equal(t, course.ErrNotFound, err)
	})
}

func TestService_studentsAndDates(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, db, "amina", "s3cr3tpwd")
	other := dbtest.CreateUser(t, db, "bilal", "s3cr3tpwd")
	crs := dbtest.CreateCourse(t, db, owner.ID, "Math", 100)

	std, err := svc.AddStudent(ctx, owner.ID, course.NewStudent{CourseID: crs.ID, Name: "Yusuf", Phone: "+998901234567"})
	require.NoError(t, err)
	assert.Equal(t, "+998901234567", std.Phone.String)
	noPhone, err := svc.AddStudent(ctx, owner.ID, course.NewStudent{CourseID: crs.ID, Name: "Zahra"})
	require.NoError(t, err)
	assert.False(t, noPhone.Phone.Valid)

	students, err := svc.Students(ctx, owner.ID, crs.ID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, 0.0, students[0].TotalPaid)

	_, err = svc.GetStudent(ctx, other.ID, std.ID)
	assert.Equal(t, course.ErrNotFound, err)

	dates, err := svc.AddDateRange(ctx, owner.ID, course.DateRange{CourseID: crs.ID, Start: "2025-01-01", End: "2025-01-07"})
	require.NoError(t, err)
	require.Len(t, dates, 6)

	stored, err := svc.Dates(ctx, owner.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, dates, stored)
	assert.Equal(t, "01-Jan", stored[0].Label)
	assert.Equal(t, "07-Jan", stored[5].Label)
	for i := 1; i < len(stored); i++ {
		assert.Greater(t, stored[i].ID, stored[i-1].ID)
	}

	_, err = svc.GetDate(ctx, other.ID, dates[0].ID)
	assert.Equal(t, course.ErrNotFound, err)
	assert.Equal(t, course.ErrNotFound, svc.DeleteDate(ctx, other.ID, dates[0].ID))

	require.NoError(t, svc.DeleteDate(ctx, owner.ID, dates[0].ID))
	stored, err = svc.Dates(ctx, owner.ID, crs.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 5)

	t.Run("empty range", func(t *testing.T) {
		dates, err := svc.AddDateRange(ctx, owner.ID, course.DateRange{CourseID: crs.ID, Start: "2025-01-05", End: "2025-01-05"})
		require.NoError(t, err)
		assert.Empty(t, dates)
	})
}

func TestService_Delete(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, db, "amina", "s3cr3tpwd")
	crs := dbtest.CreateCourse(t, db, owner.ID, "Math", 100)
	keep := dbtest.CreateCourse(t, db, owner.ID, "Physics", 50)
	std := dbtest.CreateStudent(t, db, crs.ID, "Yusuf")
	kept := dbtest.CreateStudent(t, db, keep.ID, "Zahra")
	dates := dbtest.CreateDates(t, db, crs.ID, "01-Jan", "02-Jan")

	_, err := db.Exec(`INSERT INTO attendance (student_id, date_id, status) VALUES (?, ?, 'present')`, std.ID, dates[0].ID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO payments (student_id, amount, p_date) VALUES (?, 100, '2025-01-01'), (?, 50, '2025-01-01')`, std.ID, kept.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner.ID, crs.ID))

	_, err = svc.Get(ctx, owner.ID, crs.ID)
	assert.Equal(t, course.ErrNotFound, err)

	count := func(table string) int {
		var n int
		require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
		return n
	}
	assert.Equal(t, 1, count("students"))
	assert.Equal(t, 0, count("class_dates"))
	assert.Equal(t, 0, count("attendance"))
	assert.Equal(t, 1, count("payments"))
	assert.Equal(t, 1, count("courses"))
}
