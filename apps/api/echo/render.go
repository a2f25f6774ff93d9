package echoapi

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/course"
	"github.com/trezcool/markaz/core/user"
)

//go:embed templates
var templateFS embed.FS

type (
	layout struct {
		AppName string
		User    user.User
		Flashes []flash
	}

	authPage struct {
		layout
		Username string // re-rendered forms keep what was typed
	}

	// dashboard is also the JSON body of the dashboard routes.
	dashboard struct {
		Courses    []course.Course                   `json:"courses"`
		CourseView *course.Course                    `json:"course_view"`
		Students   []course.Student                  `json:"students"`
		Dates      []course.ClassDate                `json:"dates"`
		Attendance map[int]map[int]attendance.Status `json:"attendance_data"`
		Stats      map[int]int                       `json:"stats"`
	}

	dashboardPage struct {
		layout
		dashboard
	}
)

// templateRenderer renders templates/pages/<name>.gohtml inside templates/layout.gohtml.
type templateRenderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer() (*templateRenderer, error) {
	pages, err := fs.Glob(templateFS, "templates/pages/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}

	r := &templateRenderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.gohtml", page)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", page)
		}
		r.templates[strings.TrimSuffix(path.Base(page), ".gohtml")] = tmpl
	}
	return r, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// newLayout collects what every page shows, consuming the pending flashes.
func (s *Server) newLayout(ctx echo.Context, extra ...flash) (layout, error) {
	flashes, err := popFlashes(ctx)
	if err != nil {
		return layout{}, err
	}
	return layout{
		AppName: s.conf.AppName,
		User:    contextUser(ctx),
		Flashes: append(flashes, extra...),
	}, nil
}
