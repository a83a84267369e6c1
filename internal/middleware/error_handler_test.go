package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/epson121/budget/internal/errors"
	"github.com/epson121/budget/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type ErrorHandlerTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *ErrorHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.HTTPErrorHandler = CustomHTTPErrorHandler
}

func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) newContext(traceID string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if traceID != "" {
		c.Set(TraceIDContextKey, traceID)
	}
	return c, rec
}

func (s *ErrorHandlerTestSuite) decode(rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	var resp apperrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *ErrorHandlerTestSuite) TestEchoHTTPError() {
	c, rec := s.newContext("test-trace-id")

	CustomHTTPErrorHandler(echo.NewHTTPError(http.StatusNotFound, "Resource not found"), c)

	s.Equal(http.StatusNotFound, rec.Code)
	resp := s.decode(rec)
	s.Equal("SYSTEM_007", resp.Error.Code)
	s.Equal("Resource not found", resp.Error.Message)
	s.Equal("test-trace-id", resp.Error.TraceID)
}

func (s *ErrorHandlerTestSuite) TestValidationErrors() {
	c, rec := s.newContext("trace-1")

	type request struct {
		Name string `json:"name" validate:"required,category_name"`
	}
	err := validation.GetValidator().Struct(request{Name: "Food!"})
	s.Require().Error(err)

	CustomHTTPErrorHandler(err, c)

	s.Equal(http.StatusBadRequest, rec.Code)
	resp := s.decode(rec)
	s.Equal("VALIDATION_001", resp.Error.Code)
	s.Require().Len(resp.Error.Details, 1)
	s.Contains(resp.Error.Details[0], "name:")
}

func (s *ErrorHandlerTestSuite) TestGenericError() {
	c, rec := s.newContext("test-trace-id")

	CustomHTTPErrorHandler(errors.New("generic error"), c)

	s.Equal(http.StatusInternalServerError, rec.Code)
	resp := s.decode(rec)
	s.Equal("SYSTEM_001", resp.Error.Code)
	s.NotContains(rec.Body.String(), "generic error")
	s.Contains(rec.Header().Get("Content-Type"), "application/json")
}

func (s *ErrorHandlerTestSuite) TestNoTraceID() {
	c, rec := s.newContext("")

	CustomHTTPErrorHandler(errors.New("test error"), c)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("unknown", s.decode(rec).Error.TraceID)
}

func (s *ErrorHandlerTestSuite) TestCommittedResponseIsKept() {
	c, rec := s.newContext("")
	_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})

	CustomHTTPErrorHandler(errors.New("test error"), c)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "ok")
}

func (s *ErrorHandlerTestSuite) TestMapHTTPStatusToErrorCode() {
	testCases := []struct {
		status       int
		expectedCode string
	}{
		{http.StatusBadRequest, "VALIDATION_001"},
		{http.StatusUnauthorized, "AUTH_002"},
		{http.StatusNotFound, "SYSTEM_007"},
		{http.StatusMethodNotAllowed, "VALIDATION_001"},
		{http.StatusUnprocessableEntity, "VALIDATION_001"},
		{http.StatusTooManyRequests, "SYSTEM_006"},
		{http.StatusInternalServerError, "SYSTEM_001"},
		{http.StatusServiceUnavailable, "SYSTEM_004"},
		{999, "SYSTEM_001"},
	}

	for _, tc := range testCases {
		s.Run(http.StatusText(tc.status), func() {
			c, rec := s.newContext("test-trace-id")

			CustomHTTPErrorHandler(echo.NewHTTPError(tc.status), c)

			s.Equal(tc.status, rec.Code)
			s.Equal(tc.expectedCode, s.decode(rec).Error.Code)
		})
	}
}
