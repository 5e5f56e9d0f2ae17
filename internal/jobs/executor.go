package jobs

import (
	"context"

	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
)

const (
	JOB_EXIT_CODE_SUCCESS         = 200
	JOB_EXIT_CODE_FAILED          = 500
	JOB_EXIT_CODE_SKIPPED         = 204
	JOB_EXIT_CODE_PARTIAL_SUCCESS = 206
)

type JobType string

const (
	JobTypeFuturesDataSync    JobType = "futures_data_sync"
	JobTypeAlertScan          JobType = "alert_scan"
	JobTypeBotPerformanceSync JobType = "bot_performance_sync"
	JobTypeDataCleanUp        JobType = "data_cleanup"
)

type JobResult struct {
	ExitCode int32  `json:"exit_code"`
	Output   string `json:"output"`
}

// JobExecutionStrategy defines the interface for different job execution strategies.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *model.Job) (JobResult, error)
	GetType() JobType
}

// AlertNotifier is the slice of the alert service the jobs need. Declared here
// so the jobs package does not depend on the service package.
type AlertNotifier interface {
	CreateAndDispatch(ctx context.Context, req dto.CreateAlertRequest, setting model.AlertSetting) (*model.Alert, error)
	NotifyProfitThreshold(ctx context.Context, userID, executionID uint, pair string, profit float64)
	NotifyLossThreshold(ctx context.Context, userID, executionID uint, pair string, loss float64)
	NotifyPerformanceMilestone(ctx context.Context, userID, executionID uint, pair string, roi float64)
}
