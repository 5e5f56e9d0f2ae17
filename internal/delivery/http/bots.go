package http

import (
	"net/http"

	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupBots(base *echo.Group) {
	strategies := base.Group("/bot-strategies")
	{
		strategies.GET("", h.GetBotStrategies)
		strategies.POST("", h.CreateBotStrategy)
		strategies.GET("/:id", h.GetBotStrategy)
	}

	executions := base.Group("/bot-executions")
	{
		executions.GET("", h.GetBotExecutions)
		executions.POST("", h.CreateBotExecution)
		executions.POST("/deploy", h.DeployBotStrategy)
		executions.PUT("/:id/status", h.UpdateBotExecutionStatus)
	}
}

func (h *HttpAPIHandler) GetBotStrategies(c echo.Context) error {
	userID := uintQuery(c, "user_id")
	if userID == 0 {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("user_id is required"))
	}

	strategies, err := h.service.BotService.GetStrategies(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("bot strategies", strategies))
}

func (h *HttpAPIHandler) CreateBotStrategy(c echo.Context) error {
	var req dto.CreateBotStrategyRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	strategy, err := h.service.BotService.CreateStrategy(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "bot strategy created", strategy))
}

func (h *HttpAPIHandler) GetBotStrategy(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid strategy id"))
	}

	strategy, err := h.service.BotService.GetStrategy(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("bot strategy", strategy))
}

func (h *HttpAPIHandler) GetBotExecutions(c echo.Context) error {
	userID := uintQuery(c, "user_id")
	if userID == 0 {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("user_id is required"))
	}

	param := dto.GetBotExecutionsParam{UserID: userID}
	if strategyID := uintQuery(c, "strategy_id"); strategyID > 0 {
		param.StrategyID = utils.ToPointer(strategyID)
	}
	if status := c.QueryParam("status"); status != "" {
		param.Status = utils.ToPointer(model.ExecutionStatus(status))
	}

	executions, err := h.service.BotService.GetExecutions(c.Request().Context(), param)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("bot executions", executions))
}

func (h *HttpAPIHandler) CreateBotExecution(c echo.Context) error {
	var req dto.CreateBotExecutionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	execution, err := h.service.BotService.CreateExecution(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "bot execution created", execution))
}

func (h *HttpAPIHandler) DeployBotStrategy(c echo.Context) error {
	var req dto.DeployStrategyRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.service.BotService.DeployToFolder(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}

	// Partial failure still returns the successes; the caller inspects
	// failed_pairs.
	status := http.StatusCreated
	if len(result.FailedPairs) > 0 {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, dto.NewBaseResponse(status, "strategy deployed", result))
}

func (h *HttpAPIHandler) UpdateBotExecutionStatus(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid execution id"))
	}

	var req dto.UpdateExecutionStatusRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	execution, err := h.service.BotService.UpdateExecutionStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("execution status updated", execution))
}
