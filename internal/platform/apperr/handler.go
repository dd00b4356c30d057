package apperr

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// HTTPErrorHandler returns an echo error handler that maps classified errors
// to their status codes and everything else to a 500. Outside production the
// raw error text is included for diagnostics; in production only the generic
// message is returned.
func HTTPErrorHandler(logger zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		resp := errorResponse{Message: "internal server error"}

		if appErr := From(err); appErr != nil {
			status = appErr.Status
			resp.Message = appErr.Message
			if appErr.Err != nil && !production {
				resp.Error = appErr.Err.Error()
			}
		} else if httpErr, ok := err.(*echo.HTTPError); ok {
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				resp.Message = msg
			}
		} else if !production {
			resp.Error = err.Error()
		}

		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}
