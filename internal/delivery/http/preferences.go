package http

import (
	"net/http"

	"futures-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPreferences(base *echo.Group) {
	preferences := base.Group("/user-preferences")
	{
		preferences.GET("/:userId", h.GetUserPreferences)
		preferences.POST("/:userId", h.SaveUserPreferences)
	}
}

func (h *HttpAPIHandler) GetUserPreferences(c echo.Context) error {
	userID, err := uintParam(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user id"))
	}

	pref, err := h.service.AuthService.GetPreferences(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("user preferences", pref))
}

func (h *HttpAPIHandler) SaveUserPreferences(c echo.Context) error {
	userID, err := uintParam(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user id"))
	}

	var req dto.SavePreferencesRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	pref, err := h.service.AuthService.SavePreferences(c.Request().Context(), userID, req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("user preferences saved", pref))
}
