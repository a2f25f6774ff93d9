package course

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// ErrNotFound is returned for courses, students and dates that do not exist or belong to another user.
var ErrNotFound = errors.New("not found")

type (
	// Repository persists Courses, Students and ClassDates.
	// Every lookup taking an ownerID must return ErrNotFound when the object is not owned by ownerID.
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryActiveCourses(ctx context.Context, ownerID int) ([]Course, error)
		GetCourse(ctx context.Context, ownerID, id int) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		ArchiveCourse(ctx context.Context, ownerID, id int) error
		// DeleteCourse removes the course with its students, dates, attendance and payments atomically.
		DeleteCourse(ctx context.Context, ownerID, id int) error

		CreateStudent(ctx context.Context, std Student) (Student, error)
		// QueryStudents returns the roster of a course with TotalPaid filled in.
		QueryStudents(ctx context.Context, courseID int) ([]Student, error)
		GetStudent(ctx context.Context, ownerID, id int) (Student, error)

		// CreateClassDates inserts one ClassDate per label, in order, atomically.
		CreateClassDates(ctx context.Context, courseID int, labels []string) ([]ClassDate, error)
		QueryClassDates(ctx context.Context, courseID int) ([]ClassDate, error)
		GetClassDate(ctx context.Context, ownerID, id int) (ClassDate, error)
		// DeleteClassDate removes the date and its attendance rows atomically.
		DeleteClassDate(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ownerID int, nc NewCourse) (Course, error) {
	crs, err := svc.repo.CreateCourse(ctx, Course{OwnerID: ownerID, Name: nc.Name, Price: nc.Price})
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

// ListActive returns the non-archived courses of ownerID, by id.
func (svc *Service) ListActive(ctx context.Context, ownerID int) ([]Course, error) {
	courses, err := svc.repo.QueryActiveCourses(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying active courses")
	}
	return courses, nil
}

// Get returns the course even when archived.
func (svc *Service) Get(ctx context.Context, ownerID, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, ownerID, id)
}

func (svc *Service) Update(ctx context.Context, ownerID int, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, ownerID, uc.ID)
	if err != nil {
		return Course{}, err
	}
	crs.Name = uc.Name
	crs.Price = uc.Price
	if crs, err = svc.repo.UpdateCourse(ctx, crs); err != nil {
		return Course{}, errors.Wrap(err, "updating course")
	}
	return crs, nil
}

func (svc *Service) Archive(ctx context.Context, ownerID, id int) error {
	return svc.repo.ArchiveCourse(ctx, ownerID, id)
}

func (svc *Service) Delete(ctx context.Context, ownerID, id int) error {
	return svc.repo.DeleteCourse(ctx, ownerID, id)
}

func (svc *Service) AddStudent(ctx context.Context, ownerID int, ns NewStudent) (Student, error) {
	if _, err := svc.repo.GetCourse(ctx, ownerID, ns.CourseID); err != nil {
		return Student{}, err
	}
	std, err := svc.repo.CreateStudent(ctx, Student{
		CourseID: ns.CourseID,
		Name:     ns.Name,
		Phone:    null.NewString(ns.Phone, ns.Phone != ""),
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (svc *Service) Students(ctx context.Context, ownerID, courseID int) ([]Student, error) {
	if _, err := svc.repo.GetCourse(ctx, ownerID, courseID); err != nil {
		return nil, err
	}
	students, err := svc.repo.QueryStudents(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (svc *Service) GetStudent(ctx context.Context, ownerID, id int) (Student, error) {
	return svc.repo.GetStudent(ctx, ownerID, id)
}

// AddDateRange creates the class dates of dr, Sundays excluded.
func (svc *Service) AddDateRange(ctx context.Context, ownerID int, dr DateRange) ([]ClassDate, error) {
	if _, err := svc.repo.GetCourse(ctx, ownerID, dr.CourseID); err != nil {
		return nil, err
	}
	labels, err := dr.Labels()
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, nil
	}
	dates, err := svc.repo.CreateClassDates(ctx, dr.CourseID, labels)
	if err != nil {
		return nil, errors.Wrap(err, "creating class dates")
	}
	return dates, nil
}

func (svc *Service) Dates(ctx context.Context, ownerID, courseID int) ([]ClassDate, error) {
	if _, err := svc.repo.GetCourse(ctx, ownerID, courseID); err != nil {
		return nil, err
	}
	dates, err := svc.repo.QueryClassDates(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying class dates")
	}
	return dates, nil
}

func (svc *Service) GetDate(ctx context.Context, ownerID, id int) (ClassDate, error) {
	return svc.repo.GetClassDate(ctx, ownerID, id)
}

func (svc *Service) DeleteDate(ctx context.Context, ownerID, id int) error {
	if _, err := svc.repo.GetClassDate(ctx, ownerID, id); err != nil {
		return err
	}
	if err := svc.repo.DeleteClassDate(ctx, id); err != nil {
		return errors.Wrap(err, "deleting class date")
	}
	return nil
}
