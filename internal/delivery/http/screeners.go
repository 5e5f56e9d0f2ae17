package http

import (
	"net/http"

	"futures-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupScreeners(base *echo.Group) {
	screeners := base.Group("/screeners")
	{
		screeners.GET("", h.GetScreeners)
		screeners.POST("", h.CreateScreener)
		screeners.GET("/:id", h.GetScreener)
		screeners.PUT("/:id", h.UpdateScreener)
		screeners.DELETE("/:id", h.DeleteScreener)
		screeners.POST("/:id/symbols", h.AddScreenerSymbol)
		screeners.DELETE("/:id/symbols/:symbol", h.RemoveScreenerSymbol)
		screeners.GET("/:id/matches", h.GetScreenerMatches)
	}
}

func (h *HttpAPIHandler) GetScreeners(c echo.Context) error {
	userID := uintQuery(c, "user_id")
	if userID == 0 {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("user_id is required"))
	}

	screeners, err := h.service.ScreenerService.GetByUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("screeners", screeners))
}

func (h *HttpAPIHandler) CreateScreener(c echo.Context) error {
	var req dto.CreateScreenerRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	screener, err := h.service.ScreenerService.Create(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "screener created", screener))
}

func (h *HttpAPIHandler) GetScreener(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid screener id"))
	}

	screener, err := h.service.ScreenerService.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("screener", screener))
}

func (h *HttpAPIHandler) UpdateScreener(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid screener id"))
	}

	var req dto.UpdateScreenerRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	screener, err := h.service.ScreenerService.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("screener updated", screener))
}

func (h *HttpAPIHandler) DeleteScreener(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid screener id"))
	}

	if err := h.service.ScreenerService.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("screener deleted", nil))
}

func (h *HttpAPIHandler) AddScreenerSymbol(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid screener id"))
	}

	var req dto.AddSymbolRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	screener, err := h.service.ScreenerService.AddSymbol(c.Request().Context(), id, req.Symbol)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("symbol added", screener))
}

func (h *HttpAPIHandler) RemoveScreenerSymbol(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid screener id"))
	}

	screener, err := h.service.ScreenerService.RemoveSymbol(c.Request().Context(), id, c.Param("symbol"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("symbol removed", screener))
}

func (h *HttpAPIHandler) GetScreenerMatches(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid screener id"))
	}

	matches, err := h.service.ScreenerService.Matches(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("screener matches", matches))
}
