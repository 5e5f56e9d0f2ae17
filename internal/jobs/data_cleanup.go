package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/pkg/logger"
)

type DataCleaner interface {
	JobExecutionStrategy
}

type DataCleanUpPayload struct {
	AlertRetentionDays       int `json:"alert_retention_days"`
	PredictionRetentionDays  int `json:"prediction_retention_days"`
	TaskHistoryRetentionDays int `json:"task_history_retention_days"`
}

type DataCleanUpResult struct {
	Table string `json:"table"`
	Total int64  `json:"total"`
	Error string `json:"error,omitempty"`
}

type DataCleanUpStrategy struct {
	cfg            *config.Config
	log            *logger.Logger
	alertRepo      repository.AlertRepository
	predictionRepo repository.PricePredictionRepository
	jobRepo        repository.JobRepository
}

func NewDataCleanUpStrategy(
	cfg *config.Config,
	log *logger.Logger,
	alertRepo repository.AlertRepository,
	predictionRepo repository.PricePredictionRepository,
	jobRepo repository.JobRepository,
) DataCleaner {
	return &DataCleanUpStrategy{
		cfg:            cfg,
		log:            log,
		alertRepo:      alertRepo,
		predictionRepo: predictionRepo,
		jobRepo:        jobRepo,
	}
}

func (s *DataCleanUpStrategy) GetType() JobType {
	return JobTypeDataCleanUp
}

// Execute prunes read alerts, stale predictions, and old task history. Each
// table is attempted even when an earlier one fails.
func (s *DataCleanUpStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting data clean up")

	var payload DataCleanUpPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to unmarshal job payload: %v", err)}, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if payload.AlertRetentionDays <= 0 {
		payload.AlertRetentionDays = s.cfg.Cleanup.AlertRetentionDays
	}
	if payload.PredictionRetentionDays <= 0 {
		payload.PredictionRetentionDays = s.cfg.Cleanup.PredictionRetentionDays
	}
	if payload.TaskHistoryRetentionDays <= 0 {
		payload.TaskHistoryRetentionDays = payload.AlertRetentionDays
	}

	now := time.Now()
	results := []DataCleanUpResult{}
	hadError := false

	total, err := s.alertRepo.DeleteReadOlderThan(ctx, now.AddDate(0, 0, -payload.AlertRetentionDays))
	results = append(results, cleanUpResult("alerts", total, err))
	hadError = hadError || err != nil

	total, err = s.predictionRepo.DeleteOlderThan(ctx, now.AddDate(0, 0, -payload.PredictionRetentionDays))
	results = append(results, cleanUpResult("price_predictions", total, err))
	hadError = hadError || err != nil

	total, err = s.jobRepo.DeleteTaskHistoryOlderThan(ctx, now.AddDate(0, 0, -payload.TaskHistoryRetentionDays))
	results = append(results, cleanUpResult("task_execution_history", total, err))
	hadError = hadError || err != nil

	output, _ := json.Marshal(results)
	if hadError {
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: string(output)}, nil
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(output)}, nil
}

func cleanUpResult(table string, total int64, err error) DataCleanUpResult {
	result := DataCleanUpResult{Table: table, Total: total}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
