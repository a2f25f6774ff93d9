package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/payment"
)

type paymentRow struct {
	ID        int     `db:"id"`
	StudentID int     `db:"student_id"`
	Amount    float64 `db:"amount"`
	PaidOn    string  `db:"p_date"`
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	id, err := insertReturningID(ctx, repo.db,
		`INSERT INTO payments (student_id, amount, p_date) VALUES (?, ?, ?)`, p.StudentID, p.Amount, p.PaidOn)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	p.ID = id
	return p, nil
}

func (repo paymentRepository) QueryStudentPayments(ctx context.Context, studentID int) ([]payment.Payment, error) {
	var rows []paymentRow
	q := repo.db.Rebind(`SELECT id, student_id, COALESCE(amount, 0) AS amount, COALESCE(p_date, '') AS p_date
		FROM payments WHERE student_id = ? ORDER BY id`)
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, payment.Payment(r))
	}
	return payments, nil
}

func (repo paymentRepository) SumStudentPayments(ctx context.Context, studentID int) (float64, error) {
	var total float64
	q := repo.db.Rebind(`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE student_id = ?`)
	if err := repo.db.GetContext(ctx, &total, q, studentID); err != nil {
		return 0, errors.Wrap(err, "summing payments")
	}
	return total, nil
}
