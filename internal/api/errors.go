package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediashelf/mediashelf/internal/apperr"
)

const (
	upstreamMessage = "catalog temporarily unavailable, try again later"
	missingMessage  = "item not found in catalog"
	internalMessage = "internal server error"
)

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"requestId,omitempty"`
}

// handleError maps errors returned by handlers to JSON responses. Upstream
// failures and unclassified errors never expose their detail.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := s.errorResponse(err)
	body.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)

	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).
			Str("kind", body.Kind).
			Str("requestId", body.RequestID).
			Str("uri", c.Request().RequestURI).
			Msg("request failed")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		s.logger.Warn().Err(writeErr).Msg("failed to write error response")
	}
}

func (s *Server) errorResponse(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, ErrorResponse{Error: msg, Kind: kindForStatus(he.Code)}
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError, ErrorResponse{
			Error: internalMessage,
			Kind:  apperr.KindInternal.String(),
		}
	}

	msg := ae.Message
	switch {
	case ae.Kind == apperr.KindUpstreamNotFound:
		msg = missingMessage
	case ae.Kind.IsUpstream():
		msg = upstreamMessage
	case ae.Kind == apperr.KindInternal:
		msg = internalMessage
	}
	return apperr.HTTPStatus(ae.Kind), ErrorResponse{Error: msg, Kind: ae.Kind.String()}
}

// kindForStatus names the kind for errors raised by echo itself, such as
// unknown routes and the login throttle.
func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperr.KindValidation.String()
	case http.StatusUnauthorized:
		return apperr.KindUnauthorized.String()
	case http.StatusForbidden:
		return apperr.KindForbidden.String()
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperr.KindNotFound.String()
	case http.StatusConflict:
		return apperr.KindConflict.String()
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if status >= http.StatusInternalServerError {
		return apperr.KindInternal.String()
	}
	return "error"
}
