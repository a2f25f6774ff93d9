// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/course"
	"github.com/trezcool/markaz/core/user"
	"github.com/trezcool/markaz/storage/database"
	"github.com/trezcool/markaz/storage/database/sqlx"
)

func init() {
	goose.SetLogger(goose.NopLogger())
}

// Open returns a migrated SQLite database living in t.TempDir(), closed on cleanup.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(core.DatabaseConfig{
		URL: "sqlite://" + filepath.Join(t.TempDir(), "markaz.db"),
	})
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

// CreateUser stores a user with the given credentials.
func CreateUser(t *testing.T, db *sqlx.DB, uname, pwd string) user.User {
	t.Helper()

	usr := user.User{Username: uname}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := sqlxrepos.NewUserRepository(db).CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateCourse stores a course owned by ownerID.
func CreateCourse(t *testing.T, db *sqlx.DB, ownerID int, name string, price float64) course.Course {
	t.Helper()

	crs, err := sqlxrepos.NewCourseRepository(db).CreateCourse(context.Background(), course.Course{
		OwnerID: ownerID,
		Name:    name,
		Price:   price,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

// CreateStudent enrolls a student in courseID.
func CreateStudent(t *testing.T, db *sqlx.DB, courseID int, name string) course.Student {
	t.Helper()

	std, err := sqlxrepos.NewCourseRepository(db).CreateStudent(context.Background(), course.Student{
		CourseID: courseID,
		Name:     name,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

// CreateDates adds one class date per label to courseID.
func CreateDates(t *testing.T, db *sqlx.DB, courseID int, labels ...string) []course.ClassDate {
	t.Helper()

	dates, err := sqlxrepos.NewCourseRepository(db).CreateClassDates(context.Background(), courseID, labels)
	if err != nil {
		t.Fatalf("CreateDates() failed: %v", err)
	}
	return dates
}
