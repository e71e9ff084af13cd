package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/attendance"
	"github.com/classpig/backend/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// rejectionStatus maps a check-in rejection to its HTTP status.
var rejectionStatus = map[attendance.Reason]int{
	attendance.ReasonNotFound:        http.StatusNotFound,
	attendance.ReasonOutsideWindow:   http.StatusForbidden,
	attendance.ReasonTooFar:          http.StatusForbidden,
	attendance.ReasonUnknownLocation: http.StatusUnprocessableEntity,
	attendance.ReasonCooldown:        http.StatusTooManyRequests,
}

// newAppHTTPErrorHandler renders every error returned by handlers and middleware as a JSON body.
// Unexpected errors are logged and answered with a generic 500.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, body := errorResponse(err, translator)
		if code == http.StatusInternalServerError {
			logServerError(logger, err, ctx)
			if ctx.Echo().Debug {
				body = echo.Map{"error": err.Error()}
			}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, body)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func errorResponse(err error, translator ut.Translator) (int, echo.Map) {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		return httpErrorResponse(origErr)
	case validator.ValidationErrors:
		fields := make(map[string]string, len(origErr))
		for _, fe := range origErr {
			fields[fe.Field()] = fe.Translate(translator)
		}
		return http.StatusBadRequest, fieldsBody(fields)
	case *core.ValidationError:
		if fields := origErr.FieldMap(); fields != nil {
			return http.StatusBadRequest, fieldsBody(fields)
		}
		return http.StatusBadRequest, echo.Map{"error": origErr.Error()}
	case *attendance.RejectionError:
		return rejectionResponse(origErr)
	}
	return http.StatusInternalServerError, echo.Map{"error": http.StatusText(http.StatusInternalServerError)}
}

func httpErrorResponse(herr *echo.HTTPError) (int, echo.Map) {
	// the JWT middleware reports a missing token as a bad request
	if herr == middleware.ErrJWTMissing {
		return http.StatusUnauthorized, echo.Map{"error": herr.Message}
	}
	if inner, ok := herr.Internal.(*echo.HTTPError); ok {
		herr = inner
	}
	if m, ok := herr.Message.(string); ok {
		return herr.Code, echo.Map{"error": m}
	}
	return herr.Code, echo.Map{"error": herr.Message}
}

// rejectionResponse carries the machine readable reason and, where relevant, the distance or retry time.
func rejectionResponse(rerr *attendance.RejectionError) (int, echo.Map) {
	body := echo.Map{"error": rerr.Error(), "reason": rerr.Reason.String()}
	switch rerr.Reason {
	case attendance.ReasonTooFar:
		body["distance"] = rerr.RoundedDistance()
	case attendance.ReasonCooldown:
		body["retry_at"] = rerr.RetryAt.UTC()
	}
	return rejectionStatus[rerr.Reason], body
}

func fieldsBody(fields map[string]string) echo.Map {
	body := make(echo.Map, len(fields))
	for k, v := range fields {
		body[k] = v
	}
	return body
}

func logServerError(logger core.Logger, err error, ctx echo.Context) {
	var usr user.User
	if claims, cErr := getContextClaims(ctx); cErr == nil {
		usr.ID = claims.UserID()
		usr.Username = claims.Username
	}
	msg := http.StatusText(http.StatusInternalServerError)
	logger.Error(msg, errors.Wrap(err, msg), usr, map[string]interface{}{
		"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
		"path":       ctx.Path(),
	})
}
