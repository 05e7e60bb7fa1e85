package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/event"
	"github.com/revelohq/revelo/core/institute"
	"github.com/revelohq/revelo/core/payment"
	"github.com/revelohq/revelo/core/user"
)

// domain sentinels the error handler maps straight to HTTP codes.
// Anything not listed here is a server error.
var errStatusCodes = map[error]int{
	institute.ErrNotFound:          http.StatusNotFound,
	institute.ErrExists:            http.StatusConflict,
	institute.ErrInvalidCredential: http.StatusForbidden,
	institute.ErrNotVerified:       http.StatusForbidden,
	institute.ErrForbidden:         http.StatusForbidden,

	event.ErrNotFound:           http.StatusNotFound,
	event.ErrSubEventNotFound:   http.StatusNotFound,
	event.ErrFlyerExists:        http.StatusConflict,
	event.ErrPaymentNotVerified: http.StatusBadRequest,
	event.ErrNoSubEvents:        http.StatusBadRequest,

	payment.ErrNotFound:           http.StatusNotFound,
	payment.ErrVerificationFailed: http.StatusBadRequest,

	user.ErrNotFound:         http.StatusNotFound,
	user.ErrEmailExists:      http.StatusConflict,
	user.ErrUsernameExists:   http.StatusConflict,
	user.ErrAuthFailed:       http.StatusForbidden,
	user.ErrEmailNotVerified: http.StatusForbidden,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
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
		default:
			if c, ok := errStatusCodes[errors.Cause(err)]; ok {
				code = c
				message = errors.Cause(err).Error()
				break
			}

			// any other error is a server error; provider/store detail is
			// logged, never leaked
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
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
