package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/markaz/core/course"
)

// is_archived is an INTEGER flag (legacy schema), hence the 0/1 literals below.

type courseRow struct {
	ID         int     `db:"id"`
	OwnerID    int     `db:"user_id"`
	Name       string  `db:"name"`
	Price      float64 `db:"price"`
	IsArchived int     `db:"is_archived"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Name:       r.Name,
		Price:      r.Price,
		IsArchived: r.IsArchived != 0,
	}
}

type studentRow struct {
	ID        int         `db:"id"`
	CourseID  int         `db:"course_id"`
	Name      string      `db:"name"`
	Phone     null.String `db:"phone"`
	TotalPaid float64     `db:"total_paid"`
}

func (r studentRow) toStudent() course.Student {
	return course.Student{ID: r.ID, CourseID: r.CourseID, Name: r.Name, Phone: r.Phone, TotalPaid: r.TotalPaid}
}

type classDateRow struct {
	ID       int    `db:"id"`
	CourseID int    `db:"course_id"`
	Label    string `db:"date_str"`
}

func (r classDateRow) toClassDate() course.ClassDate {
	return course.ClassDate{ID: r.ID, CourseID: r.CourseID, Label: r.Label}
}

const (
	courseColumns  = `id, user_id, name, COALESCE(price, 0) AS price, COALESCE(is_archived, 0) AS is_archived`
	studentColumns = `s.id, s.course_id, s.name, s.phone,
		(SELECT COALESCE(SUM(p.amount), 0) FROM payments p WHERE p.student_id = s.id) AS total_paid`
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

// Courses

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	id, err := insertReturningID(ctx, repo.db,
		`INSERT INTO courses (user_id, name, price, is_archived) VALUES (?, ?, ?, 0)`,
		crs.OwnerID, crs.Name, crs.Price)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	crs.ID = id
	crs.IsArchived = false
	return crs, nil
}

func (repo courseRepository) QueryActiveCourses(ctx context.Context, ownerID int) ([]course.Course, error) {
	var rows []courseRow
	q := repo.db.Rebind(`SELECT ` + courseColumns + ` FROM courses
		WHERE user_id = ? AND COALESCE(is_archived, 0) = 0 ORDER BY id`)
	if err := repo.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCourse())
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, ownerID, id int) (course.Course, error) {
	var row courseRow
	q := repo.db.Rebind(`SELECT ` + courseColumns + ` FROM courses WHERE id = ? AND user_id = ?`)
	if err := repo.db.GetContext(ctx, &row, q, id, ownerID); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "selecting course")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	res, err := repo.db.ExecContext(ctx,
		repo.db.Rebind(`UPDATE courses SET name = ?, price = ? WHERE id = ? AND user_id = ?`),
		crs.Name, crs.Price, crs.ID, crs.OwnerID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if err = checkAffected(res, course.ErrNotFound); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo courseRepository) ArchiveCourse(ctx context.Context, ownerID, id int) error {
	res, err := repo.db.ExecContext(ctx,
		repo.db.Rebind(`UPDATE courses SET is_archived = 1 WHERE id = ? AND user_id = ?`), id, ownerID)
	if err != nil {
		return errors.Wrap(err, "archiving course")
	}
	return checkAffected(res, course.ErrNotFound)
}

func (repo courseRepository) DeleteCourse(ctx context.Context, ownerID, id int) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var found int
		err := tx.GetContext(ctx, &found, tx.Rebind(`SELECT id FROM courses WHERE id = ? AND user_id = ?`), id, ownerID)
		if err != nil {
			return trapNoRowsErr(err, course.ErrNotFound, "selecting course")
		}

		stmts := []struct {
			query string
			args  []interface{}
		}{
			{`DELETE FROM attendance WHERE student_id IN (SELECT id FROM students WHERE course_id = ?)
				OR date_id IN (SELECT id FROM class_dates WHERE course_id = ?)`, []interface{}{id, id}},
			{`DELETE FROM payments WHERE student_id IN (SELECT id FROM students WHERE course_id = ?)`, []interface{}{id}},
			{`DELETE FROM students WHERE course_id = ?`, []interface{}{id}},
			{`DELETE FROM class_dates WHERE course_id = ?`, []interface{}{id}},
			{`DELETE FROM courses WHERE id = ?`, []interface{}{id}},
		}
		for _, stmt := range stmts {
			if _, err = tx.ExecContext(ctx, tx.Rebind(stmt.query), stmt.args...); err != nil {
				return errors.Wrap(err, "deleting course")
			}
		}
		return nil
	})
}

// Students

func (repo courseRepository) CreateStudent(ctx context.Context, std course.Student) (course.Student, error) {
	id, err := insertReturningID(ctx, repo.db,
		`INSERT INTO students (course_id, name, phone) VALUES (?, ?, ?)`, std.CourseID, std.Name, std.Phone)
	if err != nil {
		return course.Student{}, errors.Wrap(err, "inserting student")
	}
	std.ID = id
	return std, nil
}

func (repo courseRepository) QueryStudents(ctx context.Context, courseID int) ([]course.Student, error) {
	var rows []studentRow
	q := repo.db.Rebind(`SELECT ` + studentColumns + ` FROM students s WHERE s.course_id = ? ORDER BY s.id`)
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]course.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (repo courseRepository) GetStudent(ctx context.Context, ownerID, id int) (course.Student, error) {
	var row studentRow
	q := repo.db.Rebind(`SELECT ` + studentColumns + ` FROM students s
		JOIN courses c ON c.id = s.course_id
		WHERE s.id = ? AND c.user_id = ?`)
	if err := repo.db.GetContext(ctx, &row, q, id, ownerID); err != nil {
		return course.Student{}, trapNoRowsErr(err, course.ErrNotFound, "selecting student")
	}
	return row.toStudent(), nil
}

// Class dates

func (repo courseRepository) CreateClassDates(ctx context.Context, courseID int, labels []string) ([]course.ClassDate, error) {
	dates := make([]course.ClassDate, 0, len(labels))
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, label := range labels {
			id, err := insertReturningID(ctx, tx,
				`INSERT INTO class_dates (course_id, date_str) VALUES (?, ?)`, courseID, label)
			if err != nil {
				return errors.Wrap(err, "inserting class date")
			}
			dates = append(dates, course.ClassDate{ID: id, CourseID: courseID, Label: label})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (repo courseRepository) QueryClassDates(ctx context.Context, courseID int) ([]course.ClassDate, error) {
	var rows []classDateRow
	q := repo.db.Rebind(`SELECT id, course_id, date_str FROM class_dates WHERE course_id = ? ORDER BY id`)
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting class dates")
	}
	dates := make([]course.ClassDate, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.toClassDate())
	}
	return dates, nil
}

func (repo courseRepository) GetClassDate(ctx context.Context, ownerID, id int) (course.ClassDate, error) {
	var row classDateRow
	q := repo.db.Rebind(`SELECT d.id, d.course_id, d.date_str FROM class_dates d
		JOIN courses c ON c.id = d.course_id
		WHERE d.id = ? AND c.user_id = ?`)
	if err := repo.db.GetContext(ctx, &row, q, id, ownerID); err != nil {
		return course.ClassDate{}, trapNoRowsErr(err, course.ErrNotFound, "selecting class date")
	}
	return row.toClassDate(), nil
}

func (repo courseRepository) DeleteClassDate(ctx context.Context, id int) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM attendance WHERE date_id = ?`), id); err != nil {
			return errors.Wrap(err, "deleting attendance")
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM class_dates WHERE id = ?`), id)
		if err != nil {
			return errors.Wrap(err, "deleting class date")
		}
		return checkAffected(res, course.ErrNotFound)
	})
}
