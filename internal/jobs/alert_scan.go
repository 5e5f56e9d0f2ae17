package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/internal/screener"
	"futures-dashboard/pkg/cache"
	"futures-dashboard/pkg/common"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/utils"
)

type AlertScanner interface {
	JobExecutionStrategy
}

type AlertScanPayload struct {
	CooldownDuration string `json:"cooldown_duration"`
}

type AlertScanResult struct {
	SettingID uint   `json:"setting_id"`
	Symbol    string `json:"symbol"`
	Fired     bool   `json:"fired"`
	Error     string `json:"error,omitempty"`
}

type AlertScanStrategy struct {
	cfg           *config.Config
	log           *logger.Logger
	settingRepo   repository.AlertSettingRepository
	screenerRepo  repository.ScreenerRepository
	futuresRepo   repository.FuturesDataRepository
	inmemoryCache cache.Cache
	alertNotifier AlertNotifier
}

func NewAlertScanStrategy(
	cfg *config.Config,
	log *logger.Logger,
	settingRepo repository.AlertSettingRepository,
	screenerRepo repository.ScreenerRepository,
	futuresRepo repository.FuturesDataRepository,
	inmemoryCache cache.Cache,
	alertNotifier AlertNotifier,
) AlertScanner {
	return &AlertScanStrategy{
		cfg:           cfg,
		log:           log,
		settingRepo:   settingRepo,
		screenerRepo:  screenerRepo,
		futuresRepo:   futuresRepo,
		inmemoryCache: inmemoryCache,
		alertNotifier: alertNotifier,
	}
}

func (s *AlertScanStrategy) GetType() JobType {
	return JobTypeAlertScan
}

// Execute walks every enabled alert setting against the stored futures
// snapshots. One bad setting never aborts the scan; it is recorded in the
// output and the loop continues.
func (s *AlertScanStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	var payload AlertScanPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to unmarshal job payload: %v", err)}, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}

	cooldown := s.cfg.Alerting.DefaultCooldownDuration
	if payload.CooldownDuration != "" {
		parsed, err := time.ParseDuration(payload.CooldownDuration)
		if err != nil {
			return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to parse cooldown duration: %v", err)}, fmt.Errorf("failed to parse cooldown duration: %w", err)
		}
		cooldown = parsed
	}

	settings, err := s.settingRepo.GetEnabled(ctx)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to load alert settings: %v", err)}, err
	}
	if len(settings) == 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "no enabled alert settings"}, nil
	}

	snapshots, err := s.futuresRepo.GetAll(ctx)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to load futures snapshots: %v", err)}, err
	}
	bySymbol := make(map[string]model.FuturesData, len(snapshots))
	for _, snap := range snapshots {
		bySymbol[snap.Symbol] = snap
	}

	results := []AlertScanResult{}
	hadError := false
	for _, setting := range settings {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}

		fired, err := s.evaluateSetting(ctx, setting, bySymbol, snapshots, cooldown)
		if err != nil {
			hadError = true
			s.log.ErrorContext(ctx, "Failed to evaluate alert setting",
				logger.IntField("setting_id", int(setting.ID)),
				logger.StringField("alert_type", string(setting.AlertType)),
				logger.ErrorField(err))
			results = append(results, AlertScanResult{SettingID: setting.ID, Error: err.Error()})
			continue
		}
		results = append(results, fired...)
	}

	output, _ := json.Marshal(results)
	if hadError {
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: string(output)}, nil
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(output)}, nil
}

func (s *AlertScanStrategy) evaluateSetting(
	ctx context.Context,
	setting model.AlertSetting,
	bySymbol map[string]model.FuturesData,
	snapshots []model.FuturesData,
	cooldown time.Duration,
) ([]AlertScanResult, error) {
	if setting.AlertType == model.AlertTypeScreenerMatch {
		return s.evaluateScreenerSetting(ctx, setting, snapshots, cooldown)
	}

	switch setting.AlertType {
	case model.AlertTypePriceAbove, model.AlertTypePriceBelow, model.AlertTypePriceChange,
		model.AlertTypeVolumeSpike, model.AlertTypeFundingRate, model.AlertTypeTechnicalIndicator:
	default:
		// Bot lifecycle alert types are produced by the bot flow itself,
		// not by the market scanner.
		return []AlertScanResult{{SettingID: setting.ID, Fired: false}}, nil
	}

	settingCfg := setting.Config.Data()
	if settingCfg.TradingPair == "" {
		return nil, fmt.Errorf("setting has no trading pair")
	}
	snap, ok := bySymbol[settingCfg.TradingPair]
	if !ok {
		return []AlertScanResult{{SettingID: setting.ID, Symbol: settingCfg.TradingPair, Fired: false}}, nil
	}

	threshold := 0.0
	if setting.Threshold != nil {
		threshold = screener.ParseOrZero(*setting.Threshold)
	}

	tick := screener.TickFromFuturesData(snap)
	triggered := false
	message := ""

	switch setting.AlertType {
	case model.AlertTypePriceAbove:
		triggered = snap.Price > threshold
		message = fmt.Sprintf("%s is trading at %s, above your %s threshold.", snap.Symbol, utils.FormatUSD(snap.Price), utils.FormatUSD(threshold))
	case model.AlertTypePriceBelow:
		triggered = snap.Price < threshold
		message = fmt.Sprintf("%s is trading at %s, below your %s threshold.", snap.Symbol, utils.FormatUSD(snap.Price), utils.FormatUSD(threshold))
	case model.AlertTypePriceChange:
		triggered = math.Abs(snap.Change24h*100) >= threshold
		message = fmt.Sprintf("%s moved %s in the last 24h.", snap.Symbol, utils.FormatPercentage(snap.Change24h*100))
	case model.AlertTypeVolumeSpike:
		triggered = tick.VolumeUSD >= threshold
		message = fmt.Sprintf("%s 24h volume reached %s.", snap.Symbol, utils.FormatUSD(tick.VolumeUSD))
	case model.AlertTypeFundingRate:
		triggered = math.Abs(snap.FundingRate) >= threshold
		message = fmt.Sprintf("%s funding rate is %.6f.", snap.Symbol, snap.FundingRate)
	case model.AlertTypeTechnicalIndicator:
		value, ok := screener.IndicatorValue(tick, settingCfg.Indicator)
		if !ok {
			return nil, fmt.Errorf("unknown indicator %q", settingCfg.Indicator)
		}
		triggered = value >= threshold
		message = fmt.Sprintf("%s %s is at %.2f, at or above your %.2f threshold.", snap.Symbol, strings.ToUpper(settingCfg.Indicator), value, threshold)
	}

	if !triggered {
		return []AlertScanResult{{SettingID: setting.ID, Symbol: snap.Symbol, Fired: false}}, nil
	}

	fired, err := s.fire(ctx, setting, snap.Symbol, message, cooldown)
	if err != nil {
		return nil, err
	}
	return []AlertScanResult{{SettingID: setting.ID, Symbol: snap.Symbol, Fired: fired}}, nil
}

func (s *AlertScanStrategy) evaluateScreenerSetting(
	ctx context.Context,
	setting model.AlertSetting,
	snapshots []model.FuturesData,
	cooldown time.Duration,
) ([]AlertScanResult, error) {
	settingCfg := setting.Config.Data()
	if settingCfg.ScreenerID == nil {
		return nil, fmt.Errorf("screener_match setting has no screener_id")
	}

	scr, err := s.screenerRepo.GetByID(ctx, *settingCfg.ScreenerID)
	if err != nil {
		return nil, err
	}
	if scr == nil {
		return nil, fmt.Errorf("screener %d not found", *settingCfg.ScreenerID)
	}

	criteria := scr.Criteria.Data()
	results := []AlertScanResult{}
	for _, snap := range snapshots {
		if len(scr.Symbols) > 0 && !utils.ContainsString(scr.Symbols, snap.Symbol) {
			continue
		}
		if !screener.Matches(screener.TickFromFuturesData(snap), criteria) {
			continue
		}

		message := fmt.Sprintf("%s matches screener %q at %s (%s 24h).",
			snap.Symbol, scr.Name, utils.FormatUSD(snap.Price), utils.FormatPercentage(snap.Change24h*100))
		fired, err := s.fire(ctx, setting, snap.Symbol, message, cooldown)
		if err != nil {
			results = append(results, AlertScanResult{SettingID: setting.ID, Symbol: snap.Symbol, Error: err.Error()})
			continue
		}
		results = append(results, AlertScanResult{SettingID: setting.ID, Symbol: snap.Symbol, Fired: fired})
	}
	return results, nil
}

// fire creates and dispatches the alert unless the setting is still cooling
// down for this symbol. It reports whether the alert actually went out.
func (s *AlertScanStrategy) fire(ctx context.Context, setting model.AlertSetting, symbol, message string, cooldown time.Duration) (bool, error) {
	settingCfg := setting.Config.Data()
	if settingCfg.CooldownMinutes > 0 {
		cooldown = time.Duration(settingCfg.CooldownMinutes) * time.Minute
	}

	key := fmt.Sprintf(common.KeyAlertCooldown, setting.ID, symbol)
	if _, onCooldown := s.inmemoryCache.Get(key); onCooldown {
		return false, nil
	}

	_, err := s.alertNotifier.CreateAndDispatch(ctx, dto.CreateAlertRequest{
		UserID:   setting.UserID,
		Type:     setting.AlertType,
		Title:    alertTitle(setting.AlertType, symbol),
		Message:  message,
		Severity: model.SeverityInfo,
	}, setting)
	if err != nil {
		return false, err
	}

	s.inmemoryCache.Set(key, struct{}{}, cooldown)
	return true, nil
}

func alertTitle(alertType model.AlertType, symbol string) string {
	switch alertType {
	case model.AlertTypePriceAbove:
		return fmt.Sprintf("Price above target: %s", symbol)
	case model.AlertTypePriceBelow:
		return fmt.Sprintf("Price below target: %s", symbol)
	case model.AlertTypePriceChange:
		return fmt.Sprintf("Big move on %s", symbol)
	case model.AlertTypeVolumeSpike:
		return fmt.Sprintf("Volume spike on %s", symbol)
	case model.AlertTypeFundingRate:
		return fmt.Sprintf("Funding rate alert: %s", symbol)
	case model.AlertTypeTechnicalIndicator:
		return fmt.Sprintf("Indicator alert: %s", symbol)
	case model.AlertTypeScreenerMatch:
		return fmt.Sprintf("Screener match: %s", symbol)
	default:
		return fmt.Sprintf("Alert: %s", symbol)
	}
}
