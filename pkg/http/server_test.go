package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScan/internal/domain/models"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
	e.GET("/panic", func(c echo.Context) error { panic("boom") })
	e.GET("/report", func(c echo.Context) error {
		return AppErrorResponse(c, fmt.Errorf("latest: %w", models.ErrNoReport))
	})
}

func do(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServerRoutes(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}, nil})

	rec := do(s, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"message":"OK","data":"pong"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do(s, "/healthz").Code)
	assert.Equal(t, http.StatusOK, do(s, "/metrics").Code)
}

func TestServerRecoversPanics(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}})
	rec := do(s, "/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAppErrorResponseMapsDomainErrors(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}})
	rec := do(s, "/report")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_NOT_FOUND")
}

func TestFromDomain(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrNoReport, http.StatusNotFound},
		{fmt.Errorf("run: %w", models.ErrRunInProgress), http.StatusConflict},
		{models.ErrInvalidConfig, http.StatusBadRequest},
		{TooManyRequestsError("slow down"), http.StatusTooManyRequests},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FromDomain(tc.err).Status, tc.err.Error())
	}
}
