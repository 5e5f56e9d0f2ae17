package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/service"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, validator *goValidator.Validate, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	base := h.echo.Group("/api")
	h.SetupAuth(base)
	h.SetupScreeners(base)
	h.SetupAlerts(base)
	h.SetupFutures(base)
	h.SetupBots(base)
	h.SetupPredictions(base)
	h.SetupPreferences(base)
	h.SetupJobs(base)
}

// bindAndValidate binds the request body into req and validates it, writing
// the 400 response itself when either step fails.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	return nil
}

// writeServiceError maps the service sentinel errors onto HTTP statuses.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse(err.Error()))
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrPairAlreadyExists),
		errors.Is(err, service.ErrFolderHasActiveBot):
		return c.JSON(http.StatusConflict, dto.NewConflictResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, dto.NewBaseResponse(http.StatusUnauthorized, err.Error(), nil))
	case errors.Is(err, service.ErrFolderEmpty), errors.Is(err, service.ErrNoMarketData):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func uintQuery(c echo.Context, name string) uint {
	v, err := strconv.ParseUint(c.QueryParam(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
