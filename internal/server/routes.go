package server

import (
	"errors"
	"net/http"
	"time"

	"motorfleet2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type deviceSummary struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type deviceState struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
}

type startPayload struct {
	Speed int32 `json:"speed"`
}

type commandResult struct {
	Device string `json:"device"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/devices", s.ListDevicesHandler)
	e.GET("/devices/:id", s.GetDeviceHandler)
	e.POST("/devices/:id/start", s.StartDeviceHandler)
	e.POST("/devices/:id/stop", s.StopDeviceHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) ListDevicesHandler(c echo.Context) error {
	typeName := s.fleet.Template().Name()
	devices := s.fleet.Devices()
	out := make([]deviceSummary, 0, len(devices))
	for _, dev := range devices {
		out = append(out, deviceSummary{Name: dev.Instance.Name(), Type: typeName})
	}
	return c.JSON(http.StatusOK, out)
}

// GetDeviceHandler reads the externally-visible state, so it reflects what the
// synchronizer last wrote, not the controller's live value.
func (s *Server) GetDeviceHandler(c echo.Context) error {
	id := c.Param("id")
	handle, ok := s.handles[id]
	if !ok {
		return c.JSON(http.StatusNotFound, commandResult{Device: id, Error: "unknown device"})
	}
	attrs := make(map[string]any)
	for _, spec := range s.fleet.Template().Attributes() {
		value, err := s.tree.ReadAttribute(handle, spec.Name)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, commandResult{Device: id, Error: err.Error()})
		}
		attrs[spec.Name] = value
	}
	return c.JSON(http.StatusOK, deviceState{
		Name:       id,
		Type:       s.fleet.Template().Name(),
		Attributes: attrs,
	})
}

func (s *Server) StartDeviceHandler(c echo.Context) error {
	id := c.Param("id")
	var payload startPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, commandResult{Device: id, Error: "body must be {\"speed\": n}"})
	}
	return s.dispatchCommand(c, id, domain.StartMotorRequest{Device: id, Speed: payload.Speed})
}

func (s *Server) StopDeviceHandler(c echo.Context) error {
	id := c.Param("id")
	return s.dispatchCommand(c, id, domain.StopMotorRequest{Device: id})
}

func (s *Server) dispatchCommand(c echo.Context, id string, request any) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, request, 10*time.Second).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, commandResult{Device: id, Error: err.Error()})
	}
	response, ok := res.(domain.CommandResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, commandResult{Device: id, Error: "unexpected response"})
	}
	if response.HasResponseError() {
		return c.JSON(commandErrorStatus(response.GetResponseError()), commandResult{
			Device: id,
			Error:  response.GetResponseError().Error(),
		})
	}
	return c.JSON(http.StatusOK, commandResult{Device: id})
}

func commandErrorStatus(err error) int {
	var unknownDevice *domain.UnknownDeviceError
	var invalidArgument *domain.InvalidArgumentError
	switch {
	case errors.As(err, &unknownDevice):
		return http.StatusNotFound
	case errors.As(err, &invalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
