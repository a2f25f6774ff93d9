package echoapi

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/user"
)

const (
	msgRegistered         = "Registration successful, you can now log in."
	msgUsernameTaken      = "This username is already taken."
	msgInvalidCredentials = "Invalid username or password."
)

func (s *Server) registerUserRoutes() {
	s.app.GET("/register", s.registerPage, anonymousOnly)
	s.app.POST("/register", s.register)
	s.app.GET("/login", s.loginPage, anonymousOnly)
	s.app.POST("/login", s.login)
	s.app.GET("/logout", s.logout)
}

func (s *Server) renderAuthPage(ctx echo.Context, code int, name, uname string, extra ...flash) error {
	lay, err := s.newLayout(ctx, extra...)
	if err != nil {
		return err
	}
	return ctx.Render(code, name, authPage{layout: lay, Username: uname})
}

// formErrorFlashes turns validation errors into flashes, sorted by field.
func (s *Server) formErrorFlashes(err error) ([]flash, bool) {
	fldErrs, ok := fieldErrors(err, s.translator)
	if !ok {
		return nil, false
	}
	fields := make([]string, 0, len(fldErrs))
	for fld := range fldErrs {
		fields = append(fields, fld)
	}
	sort.Strings(fields)

	flashes := make([]flash, 0, len(fields))
	for _, fld := range fields {
		flashes = append(flashes, flash{Category: flashDanger, Message: fld + ": " + fldErrs[fld]})
	}
	return flashes, true
}

// Handlers

func (s *Server) registerPage(ctx echo.Context) error {
	return s.renderAuthPage(ctx, http.StatusOK, "register", "")
}

func (s *Server) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(s.validate); err != nil {
		if flashes, ok := s.formErrorFlashes(err); ok {
			return s.renderAuthPage(ctx, http.StatusBadRequest, "register", data.Username, flashes...)
		}
		return err
	}

	if _, err := s.users.Register(ctx.Request().Context(), data); err != nil {
		if errors.Cause(err) == user.ErrUsernameExists {
			return s.renderAuthPage(ctx, http.StatusConflict, "register", data.Username,
				flash{Category: flashDanger, Message: msgUsernameTaken})
		}
		return errors.Wrap(err, "registering user")
	}

	if err := addFlash(ctx, flashSuccess, msgRegistered); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/login")
}

func (s *Server) loginPage(ctx echo.Context) error {
	return s.renderAuthPage(ctx, http.StatusOK, "login", "")
}

func (s *Server) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	invalid := flash{Category: flashDanger, Message: msgInvalidCredentials}
	if err := data.Validate(s.validate); err != nil {
		return s.renderAuthPage(ctx, http.StatusUnauthorized, "login", data.Username, invalid)
	}

	usr, err := s.users.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return s.renderAuthPage(ctx, http.StatusUnauthorized, "login", data.Username, invalid)
		}
		return errors.Wrap(err, "authenticating")
	}

	if err = startSession(ctx, usr); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) logout(ctx echo.Context) error {
	if err := endSession(ctx); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/login")
}
