package http

import (
	"net/http"

	"futures-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPredictions(base *echo.Group) {
	predictions := base.Group("/predictions")
	{
		predictions.GET("/:symbol", h.GetPrediction)
		predictions.POST("/:symbol", h.CreatePrediction)
	}
}

func (h *HttpAPIHandler) GetPrediction(c echo.Context) error {
	prediction, err := h.service.PredictionService.GetLatest(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("prediction", prediction))
}

func (h *HttpAPIHandler) CreatePrediction(c echo.Context) error {
	var req dto.CreatePredictionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	prediction, err := h.service.PredictionService.Predict(c.Request().Context(), c.Param("symbol"), req.HorizonHours)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "prediction created", prediction))
}
