package payment

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/course"
)

// overridden in tests
var nowFunc = time.Now

type Payment struct {
	ID        int     `json:"id"`
	StudentID int     `json:"student_id"`
	Amount    float64 `json:"amount"`
	PaidOn    string  `json:"p_date"` // YYYY-MM-DD
}

// NewPayment is appended to a Student's ledger. Date defaults to today.
type NewPayment struct {
	StudentID int     `json:"student_id" validate:"required"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Date = core.CleanString(np.Date)
	return validate.Struct(np)
}

type (
	// Repository is an append-only payment ledger.
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		QueryStudentPayments(ctx context.Context, studentID int) ([]Payment, error)
		SumStudentPayments(ctx context.Context, studentID int) (float64, error)
	}

	Students interface {
		GetStudent(ctx context.Context, ownerID, id int) (course.Student, error)
	}

	Service struct {
		repo     Repository
		students Students
	}
)

func NewService(repo Repository, students Students) *Service {
	return &Service{repo: repo, students: students}
}

func (svc *Service) Add(ctx context.Context, ownerID int, np NewPayment) (Payment, error) {
	if _, err := svc.students.GetStudent(ctx, ownerID, np.StudentID); err != nil {
		return Payment{}, err
	}

	paidOn := np.Date
	if paidOn == "" {
		paidOn = nowFunc().Format(core.DateLayout)
	}
	p, err := svc.repo.CreatePayment(ctx, Payment{StudentID: np.StudentID, Amount: np.Amount, PaidOn: paidOn})
	if err != nil {
		return Payment{}, errors.Wrap(err, "creating payment")
	}
	return p, nil
}

// History returns the payments of a student, oldest first.
func (svc *Service) History(ctx context.Context, ownerID, studentID int) ([]Payment, error) {
	if _, err := svc.students.GetStudent(ctx, ownerID, studentID); err != nil {
		return nil, err
	}
	payments, err := svc.repo.QueryStudentPayments(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	return payments, nil
}

func (svc *Service) TotalPaid(ctx context.Context, ownerID, studentID int) (float64, error) {
	if _, err := svc.students.GetStudent(ctx, ownerID, studentID); err != nil {
		return 0, err
	}
	total, err := svc.repo.SumStudentPayments(ctx, studentID)
	if err != nil {
		return 0, errors.Wrap(err, "summing payments")
	}
	return total, nil
}
