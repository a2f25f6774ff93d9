package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

// UpsertRecord relies on the (student_id, date_id) unique constraint; concurrent marks never duplicate rows.
func (repo attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) error {
	q := repo.db.Rebind(`INSERT INTO attendance (student_id, date_id, status) VALUES (?, ?, ?)
		ON CONFLICT (student_id, date_id) DO UPDATE SET status = excluded.status`)
	if _, err := repo.db.ExecContext(ctx, q, rec.StudentID, rec.DateID, string(rec.Status)); err != nil {
		return errors.Wrap(err, "upserting attendance")
	}
	return nil
}

func (repo attendanceRepository) QueryCourseRecords(ctx context.Context, courseID int) ([]attendance.Record, error) {
	var records []attendance.Record
	q := repo.db.Rebind(`SELECT a.student_id, a.date_id, COALESCE(a.status, '') AS status FROM attendance a
		JOIN students s ON s.id = a.student_id
		WHERE s.course_id = ?`)
	if err := repo.db.SelectContext(ctx, &records, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	return records, nil
}
