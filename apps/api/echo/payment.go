package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/course"
	"github.com/trezcool/markaz/core/payment"
)

type ledger struct {
	Student   course.Student    `json:"student"`
	Payments  []payment.Payment `json:"payments"`
	TotalPaid float64           `json:"total_paid"`
}

func (s *Server) registerPaymentRoutes() {
	api := s.loginRequired(true)
	s.app.POST("/add_payment", s.addPayment, api)
	s.app.GET("/student/:id/payments", s.studentPayments, api)
}

func (s *Server) addPayment(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(s.validate); err != nil {
		return err
	}

	if _, err := s.payments.Add(ctx.Request().Context(), contextUser(ctx).ID, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statusOK)
}

func (s *Server) studentPayments(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	usr := contextUser(ctx)

	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	std, err := s.courses.GetStudent(reqCtx, usr.ID, id)
	if err != nil {
		return err
	}
	payments, err := s.payments.History(reqCtx, usr.ID, id)
	if err != nil {
		return err
	}
	total, err := s.payments.TotalPaid(reqCtx, usr.ID, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ledger{Student: std, Payments: payments, TotalPaid: total})
}
