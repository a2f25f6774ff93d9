package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/attendance"
)

func (s *Server) registerAttendanceRoutes() {
	s.app.POST("/update_attendance", s.updateAttendance, s.loginRequired(true))
}

func (s *Server) updateAttendance(ctx echo.Context) error {
	var data attendance.Mark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Mark")
	}
	if err := data.Validate(s.validate); err != nil {
		return err
	}

	if err := s.attendance.Mark(ctx.Request().Context(), contextUser(ctx).ID, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statusOK)
}
