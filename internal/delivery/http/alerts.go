package http

import (
	"net/http"
	"strconv"

	"futures-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAlerts(base *echo.Group) {
	alerts := base.Group("/alerts")
	{
		alerts.GET("", h.GetAlerts)
		alerts.POST("", h.CreateAlert)
		alerts.PUT("/read-all", h.MarkAllAlertsRead)
		alerts.PUT("/:id/read", h.MarkAlertRead)
		alerts.PUT("/:id/pin", h.PinAlert)
		alerts.DELETE("/:id", h.DeleteAlert)
	}

	settings := base.Group("/alert-settings")
	{
		settings.GET("", h.GetAlertSettings)
		settings.POST("", h.CreateAlertSetting)
		settings.PUT("/:id", h.UpdateAlertSetting)
		settings.DELETE("/:id", h.DeleteAlertSetting)
	}
}

func (h *HttpAPIHandler) GetAlerts(c echo.Context) error {
	userID := uintQuery(c, "user_id")
	if userID == 0 {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("user_id is required"))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	param := dto.GetAlertsParam{
		UserID:     userID,
		UnreadOnly: c.QueryParam("unread_only") == "true",
		PinnedOnly: c.QueryParam("pinned_only") == "true",
		Limit:      limit,
	}

	alerts, err := h.service.AlertService.List(c.Request().Context(), param)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("alerts", alerts))
}

func (h *HttpAPIHandler) CreateAlert(c echo.Context) error {
	var req dto.CreateAlertRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	alert, err := h.service.AlertService.Create(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "alert created", alert))
}

func (h *HttpAPIHandler) MarkAlertRead(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid alert id"))
	}

	if err := h.service.AlertService.MarkAsRead(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("alert marked as read", nil))
}

func (h *HttpAPIHandler) MarkAllAlertsRead(c echo.Context) error {
	userID := uintQuery(c, "user_id")
	if userID == 0 {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("user_id is required"))
	}

	if err := h.service.AlertService.MarkAllAsRead(c.Request().Context(), userID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("all alerts marked as read", nil))
}

func (h *HttpAPIHandler) PinAlert(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid alert id"))
	}

	pinned := c.QueryParam("pinned") != "false"
	if err := h.service.AlertService.SetPinned(c.Request().Context(), id, pinned); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("alert pin updated", nil))
}

func (h *HttpAPIHandler) DeleteAlert(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid alert id"))
	}

	if err := h.service.AlertService.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("alert deleted", nil))
}

func (h *HttpAPIHandler) GetAlertSettings(c echo.Context) error {
	userID := uintQuery(c, "user_id")
	if userID == 0 {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("user_id is required"))
	}

	settings, err := h.service.AlertService.GetSettings(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("alert settings", settings))
}

func (h *HttpAPIHandler) CreateAlertSetting(c echo.Context) error {
	var req dto.CreateAlertSettingRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	setting, err := h.service.AlertService.CreateSetting(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "alert setting created", setting))
}

func (h *HttpAPIHandler) UpdateAlertSetting(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid alert setting id"))
	}

	var req dto.UpdateAlertSettingRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	setting, err := h.service.AlertService.UpdateSetting(c.Request().Context(), id, req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("alert setting updated", setting))
}

func (h *HttpAPIHandler) DeleteAlertSetting(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid alert setting id"))
	}

	if err := h.service.AlertService.DeleteSetting(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("alert setting deleted", nil))
}
