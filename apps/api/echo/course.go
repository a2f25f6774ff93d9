package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/course"
	"github.com/trezcool/markaz/services/export"
)

var statusOK = echo.Map{"status": "ok"}

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) registerCourseRoutes() {
	page, api := s.loginRequired(false), s.loginRequired(true)

	s.app.GET("/", s.dashboard, page)
	s.app.GET("/dashboard", s.dashboard, page)
	s.app.GET("/course/:id", s.dashboard, page)
	s.app.GET("/course/:id/export", s.exportCourse, page)
	s.app.POST("/add_course", s.addCourse, page)
	s.app.POST("/add_student", s.addStudent, page)
	s.app.POST("/add_range_dates", s.addRangeDates, page)

	s.app.POST("/edit_course", s.editCourse, api)
	s.app.POST("/archive_course", s.archiveCourse, api)
	s.app.POST("/delete_course", s.deleteCourse, api)
	s.app.POST("/delete_date", s.deleteDate, api)
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// courseURL is where course forms go back to; the dashboard when the course is unknown.
func courseURL(id int) string {
	if id <= 0 {
		return "/dashboard"
	}
	return fmt.Sprintf("/course/%d", id)
}

// formFailed answers a failed form post: field errors and unknown courses become flashes on the
// redirect target; any other error is returned as is.
func (s *Server) formFailed(ctx echo.Context, err error, redirectTo string) error {
	flashes, ok := s.formErrorFlashes(err)
	if !ok {
		if errors.Cause(err) != course.ErrNotFound {
			return err
		}
		flashes = []flash{{Category: flashDanger, Message: "Course not found."}}
		redirectTo = "/dashboard"
	}
	for _, f := range flashes {
		if ferr := addFlash(ctx, f.Category, f.Message); ferr != nil {
			return ferr
		}
	}
	return ctx.Redirect(http.StatusFound, redirectTo)
}

// Handlers

// dashboard lists the active courses of the user and, under /course/:id, the grid of that course.
// A course the user does not own is answered with the plain dashboard and a 404.
func (s *Server) dashboard(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	usr := contextUser(ctx)

	courses, err := s.courses.ListActive(reqCtx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	data := dashboard{
		Courses:    courses,
		Students:   []course.Student{},
		Dates:      []course.ClassDate{},
		Attendance: map[int]map[int]attendance.Status{},
		Stats:      map[int]int{},
	}

	code := http.StatusOK
	if ctx.Param("id") != "" {
		id, err := pathID(ctx)
		if err == nil {
			err = s.loadCourseView(ctx, id, &data)
		}
		if err != nil {
			if !(err == errHttpNotFound || errors.Cause(err) == course.ErrNotFound) {
				return err
			}
			code = http.StatusNotFound
		}
	}

	if wantsJSON(ctx) {
		return ctx.JSON(code, data)
	}
	lay, err := s.newLayout(ctx)
	if err != nil {
		return err
	}
	return ctx.Render(code, "dashboard", dashboardPage{layout: lay, dashboard: data})
}

func (s *Server) loadCourseView(ctx echo.Context, id int, data *dashboard) error {
	reqCtx := ctx.Request().Context()
	usr := contextUser(ctx)

	crs, err := s.courses.Get(reqCtx, usr.ID, id)
	if err != nil {
		return err
	}
	sheet, students, dates, err := s.attendance.Sheet(reqCtx, usr.ID, id)
	if err != nil {
		return errors.Wrap(err, "building attendance sheet")
	}
	data.CourseView = &crs
	data.Students = students
	data.Dates = dates
	data.Attendance = sheet.Marks
	data.Stats = sheet.Stats
	return nil
}

func (s *Server) exportCourse(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	usr := contextUser(ctx)

	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	crs, err := s.courses.Get(reqCtx, usr.ID, id)
	if err != nil {
		return err
	}
	sheet, students, dates, err := s.attendance.Sheet(reqCtx, usr.ID, id)
	if err != nil {
		return errors.Wrap(err, "building attendance sheet")
	}

	var buf bytes.Buffer
	if err = exportsvc.AttendanceWorkbook(&buf, crs, students, dates, sheet); err != nil {
		return errors.Wrap(err, "exporting attendance")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", exportsvc.FileName(crs)))
	return ctx.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}

func (s *Server) addCourse(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(s.validate); err != nil {
		return s.formFailed(ctx, err, "/dashboard")
	}

	if _, err := s.courses.Create(ctx.Request().Context(), contextUser(ctx).ID, data); err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) addStudent(ctx echo.Context) error {
	var data course.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(s.validate); err != nil {
		return s.formFailed(ctx, err, courseURL(data.CourseID))
	}

	if _, err := s.courses.AddStudent(ctx.Request().Context(), contextUser(ctx).ID, data); err != nil {
		return s.formFailed(ctx, err, courseURL(data.CourseID))
	}
	return ctx.Redirect(http.StatusFound, courseURL(data.CourseID))
}

func (s *Server) addRangeDates(ctx echo.Context) error {
	var data course.DateRange
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DateRange")
	}
	if err := data.Validate(s.validate); err != nil {
		return s.formFailed(ctx, err, courseURL(data.CourseID))
	}

	if _, err := s.courses.AddDateRange(ctx.Request().Context(), contextUser(ctx).ID, data); err != nil {
		return s.formFailed(ctx, err, courseURL(data.CourseID))
	}
	return ctx.Redirect(http.StatusFound, courseURL(data.CourseID))
}

func (s *Server) editCourse(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(s.validate); err != nil {
		return err
	}

	if _, err := s.courses.Update(ctx.Request().Context(), contextUser(ctx).ID, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statusOK)
}

// bindID reads the {"id": …} payload of the single object endpoints.
func (s *Server) bindID(ctx echo.Context) (int, error) {
	var data course.IDRequest
	if err := ctx.Bind(&data); err != nil {
		return 0, errors.Wrap(err, "binding to IDRequest")
	}
	if err := data.Validate(s.validate); err != nil {
		return 0, err
	}
	return data.ID, nil
}

func (s *Server) archiveCourse(ctx echo.Context) error {
	id, err := s.bindID(ctx)
	if err != nil {
		return err
	}
	if err = s.courses.Archive(ctx.Request().Context(), contextUser(ctx).ID, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statusOK)
}

func (s *Server) deleteCourse(ctx echo.Context) error {
	id, err := s.bindID(ctx)
	if err != nil {
		return err
	}
	if err = s.courses.Delete(ctx.Request().Context(), contextUser(ctx).ID, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statusOK)
}

func (s *Server) deleteDate(ctx echo.Context) error {
	id, err := s.bindID(ctx)
	if err != nil {
		return err
	}
	if err = s.courses.DeleteDate(ctx.Request().Context(), contextUser(ctx).ID, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statusOK)
}
