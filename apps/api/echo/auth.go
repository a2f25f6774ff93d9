package echoapi

import (
	"encoding/gob"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/user"
)

const (
	sessionName    = "markaz_session"
	sessionUserID  = "user_id"
	sessionUname   = "username"
	contextUserKey = "user"

	flashSuccess = "success"
	flashDanger  = "danger"
)

// flash is a one-shot message shown on the next rendered page.
type flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(flash{})
}

func newSessionStore(conf *core.Config) sessions.Store {
	store := sessions.NewCookieStore([]byte(conf.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(conf.Server.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   !(conf.Debug || conf.TestMode),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func getSession(ctx echo.Context) (*sessions.Session, error) {
	sess, err := session.Get(sessionName, ctx)
	if sess == nil {
		return nil, errors.Wrap(err, "getting session")
	}
	// a cookie signed with another key yields a fresh session along with err
	return sess, nil
}

func saveSession(ctx echo.Context, sess *sessions.Session) error {
	return errors.Wrap(sess.Save(ctx.Request(), ctx.Response()), "saving session")
}

// startSession binds the session to usr.
func startSession(ctx echo.Context, usr user.User) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	sess.Values[sessionUserID] = usr.ID
	sess.Values[sessionUname] = usr.Username
	return saveSession(ctx, sess)
}

// endSession expires the session cookie.
func endSession(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	sess.Values = make(map[interface{}]interface{})
	sess.Options.MaxAge = -1
	return saveSession(ctx, sess)
}

func sessionUser(ctx echo.Context) (user.User, bool) {
	sess, err := getSession(ctx)
	if err != nil {
		return user.User{}, false
	}
	id, ok := sess.Values[sessionUserID].(int)
	if !ok || id == 0 {
		return user.User{}, false
	}
	uname, _ := sess.Values[sessionUname].(string)
	return user.User{ID: id, Username: uname}, true
}

// contextUser returns the logged in user, zero when anonymous.
func contextUser(ctx echo.Context) user.User {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr
	}
	return user.User{}
}

func wantsJSON(ctx echo.Context) bool {
	return strings.Contains(ctx.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// loginRequired rejects anonymous requests: JSON clients get a 401, browsers are sent to the login page.
// Sessions of users that no longer exist are ended.
func (s *Server) loginRequired(jsonOnly bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, ok := sessionUser(ctx)
			if ok {
				var err error
				if usr, err = s.users.GetByID(ctx.Request().Context(), usr.ID); err != nil {
					if errors.Cause(err) != user.ErrNotFound {
						return errors.Wrap(err, "loading session user")
					}
					if err = endSession(ctx); err != nil {
						return err
					}
					ok = false
				}
			}
			if !ok {
				if jsonOnly || wantsJSON(ctx) {
					return errUnauthorized
				}
				return ctx.Redirect(http.StatusFound, "/login")
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// anonymousOnly sends logged in users to their dashboard.
func anonymousOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := sessionUser(ctx); ok {
			return ctx.Redirect(http.StatusFound, "/dashboard")
		}
		return next(ctx)
	}
}

func addFlash(ctx echo.Context, category, msg string) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	sess.AddFlash(flash{Category: category, Message: msg})
	return saveSession(ctx, sess)
}

// popFlashes returns and clears the pending flashes.
func popFlashes(ctx echo.Context) ([]flash, error) {
	sess, err := getSession(ctx)
	if err != nil {
		return nil, err
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	flashes := make([]flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(flash); ok {
			flashes = append(flashes, fl)
		}
	}
	return flashes, saveSession(ctx, sess)
}
