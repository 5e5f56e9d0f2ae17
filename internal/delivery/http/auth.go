package http

import (
	"net/http"

	"futures-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAuth(base *echo.Group) {
	auth := base.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *HttpAPIHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.AuthService.Register(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "user registered", user))
}

func (h *HttpAPIHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("login successful", user))
}
