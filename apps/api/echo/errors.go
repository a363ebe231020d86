package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/grade"
	"github.com/trezcool/fyptrack/core/group"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// error kinds let API clients dispatch on failures without parsing messages.
const (
	kindForbidden         = "forbidden"
	kindNotFound          = "not_found"
	kindValidation        = "validation_error"
	kindInvalidTransition = "invalid_transition"
	kindStatusConflict    = "status_conflict"
	kindDeadlinePassed    = "deadline_passed"
	kindMembership        = "membership_conflict"
	kindNameConflict      = "name_conflict"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var kind string
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			kind = kindValidation
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
			kind = kindValidation
		case *document.InvalidTransitionError:
			code = http.StatusConflict
			kind = kindInvalidTransition
			message = origErr.Error()
		case *document.StatusConflictError:
			code = http.StatusConflict
			kind = kindStatusConflict
			message = origErr.Error()
		case *document.DeadlinePassedError:
			code = http.StatusConflict
			kind = kindDeadlinePassed
			message = origErr.Error()
		default:
			switch errors.Cause(err) {
			case core.ErrForbidden:
				code = http.StatusForbidden
				kind = kindForbidden
				message = core.ErrForbidden.Error()
			case user.ErrNotFound, group.ErrNotFound, document.ErrNotFound,
				document.ErrDeadlineNotFound, grade.ErrNotFound, notification.ErrNotFound:
				code = http.StatusNotFound
				kind = kindNotFound
				message = errors.Cause(err).Error()
			case group.ErrOtherGroup, group.ErrAlreadyMember, group.ErrNotMember:
				code = http.StatusConflict
				kind = kindMembership
				message = errors.Cause(err).Error()
			case group.ErrNameExists:
				code = http.StatusConflict
				kind = kindNameConflict
				message = group.ErrNameExists.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.UserID()
					usr.Name = claims.Name
					usr.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		switch m := message.(type) {
		case string:
			body := echo.Map{"error": m}
			if kind != "" {
				body["kind"] = kind
			}
			message = body
		case map[string]string:
			body := echo.Map{"errors": m}
			if kind != "" {
				body["kind"] = kind
			}
			message = body
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
