package attendance

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/course"
)

var (
	ErrCourseMismatch = errors.New("student and date belong to different courses")

	errInvalidStatus = core.NewValidationError(nil, core.FieldError{Field: "status", Error: "must be one of present, absent or empty"})
)

// Mark sets the status of a student on a class date. An empty status clears it.
type Mark struct {
	StudentID int    `json:"student_id" validate:"required"`
	DateID    int    `json:"date_id" validate:"required"`
	Status    Status `json:"status" validate:"omitempty,oneof=present absent"`
}

func (m *Mark) Validate(validate *validator.Validate) error {
	return validate.Struct(m)
}

type (
	// Repository persists attendance Records.
	Repository interface {
		// UpsertRecord inserts the record or overwrites the status of the (student, date) pair.
		UpsertRecord(ctx context.Context, rec Record) error
		QueryCourseRecords(ctx context.Context, courseID int) ([]Record, error)
	}

	// Courses gives ownership-checked access to rosters and calendars.
	Courses interface {
		GetStudent(ctx context.Context, ownerID, id int) (course.Student, error)
		GetDate(ctx context.Context, ownerID, id int) (course.ClassDate, error)
		Students(ctx context.Context, ownerID, courseID int) ([]course.Student, error)
		Dates(ctx context.Context, ownerID, courseID int) ([]course.ClassDate, error)
	}

	Service struct {
		repo    Repository
		courses Courses
	}
)

func NewService(repo Repository, courses Courses) *Service {
	return &Service{repo: repo, courses: courses}
}

func (svc *Service) Mark(ctx context.Context, ownerID int, m Mark) error {
	if !m.Status.Valid() {
		return errInvalidStatus
	}
	std, err := svc.courses.GetStudent(ctx, ownerID, m.StudentID)
	if err != nil {
		return err
	}
	date, err := svc.courses.GetDate(ctx, ownerID, m.DateID)
	if err != nil {
		return err
	}
	if std.CourseID != date.CourseID {
		return ErrCourseMismatch
	}

	rec := Record{StudentID: m.StudentID, DateID: m.DateID, Status: m.Status}
	if err = svc.repo.UpsertRecord(ctx, rec); err != nil {
		return errors.Wrap(err, "upserting attendance")
	}
	return nil
}

// Sheet returns the attendance grid of a course with the roster and calendar it was built from.
func (svc *Service) Sheet(ctx context.Context, ownerID, courseID int) (Sheet, []course.Student, []course.ClassDate, error) {
	students, err := svc.courses.Students(ctx, ownerID, courseID)
	if err != nil {
		return Sheet{}, nil, nil, err
	}
	dates, err := svc.courses.Dates(ctx, ownerID, courseID)
	if err != nil {
		return Sheet{}, nil, nil, err
	}
	records, err := svc.repo.QueryCourseRecords(ctx, courseID)
	if err != nil {
		return Sheet{}, nil, nil, errors.Wrap(err, "querying attendance")
	}

	studentIDs := make([]int, 0, len(students))
	for _, std := range students {
		studentIDs = append(studentIDs, std.ID)
	}
	dateIDs := make([]int, 0, len(dates))
	for _, date := range dates {
		dateIDs = append(dateIDs, date.ID)
	}
	return BuildSheet(studentIDs, dateIDs, records), students, dates, nil
}
