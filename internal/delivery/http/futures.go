package http

import (
	"net/http"
	"strconv"

	"futures-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupFutures(base *echo.Group) {
	futures := base.Group("/futures")
	{
		futures.GET("", h.GetFuturesData)
		futures.GET("/:symbol", h.GetFuturesDataBySymbol)
		futures.GET("/:symbol/history", h.GetFuturesHistory)
	}
}

func (h *HttpAPIHandler) GetFuturesData(c echo.Context) error {
	rows, err := h.service.FuturesService.GetAll(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("futures data", rows))
}

func (h *HttpAPIHandler) GetFuturesDataBySymbol(c echo.Context) error {
	row, err := h.service.FuturesService.GetBySymbol(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("futures data", row))
}

func (h *HttpAPIHandler) GetFuturesHistory(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	param := dto.GetHistoryParam{
		Symbol:   c.Param("symbol"),
		Interval: c.QueryParam("interval"),
		Limit:    limit,
	}

	candles, err := h.service.FuturesService.GetHistory(c.Request().Context(), param)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("futures history", candles))
}
