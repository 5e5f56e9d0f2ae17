package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/utils"

	"gorm.io/datatypes"
)

// maxRecentAlerts bounds the in-memory session list handed to listeners.
const maxRecentAlerts = 50

type AlertService interface {
	Create(ctx context.Context, req dto.CreateAlertRequest) (*model.Alert, error)
	CreateAndDispatch(ctx context.Context, req dto.CreateAlertRequest, setting model.AlertSetting) (*model.Alert, error)
	List(ctx context.Context, param dto.GetAlertsParam) ([]model.Alert, error)
	Recent() []model.Alert
	MarkAsRead(ctx context.Context, id uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	SetPinned(ctx context.Context, id uint, pinned bool) error
	Delete(ctx context.Context, id uint) error

	AddListener(fn func([]model.Alert)) int
	RemoveListener(id int)

	NotifyProfitThreshold(ctx context.Context, userID, executionID uint, pair string, profit float64)
	NotifyLossThreshold(ctx context.Context, userID, executionID uint, pair string, loss float64)
	NotifyEntrySignal(ctx context.Context, userID, executionID uint, pair, strategyName string)
	NotifyExitSignal(ctx context.Context, userID, executionID uint, pair string, profit float64)
	NotifyBotError(ctx context.Context, userID, executionID uint, pair string, cause error)
	NotifyPerformanceMilestone(ctx context.Context, userID, executionID uint, pair string, roi float64)

	CreateSetting(ctx context.Context, req dto.CreateAlertSettingRequest) (*model.AlertSetting, error)
	GetSettings(ctx context.Context, userID uint) ([]model.AlertSetting, error)
	UpdateSetting(ctx context.Context, id uint, req dto.UpdateAlertSettingRequest) (*model.AlertSetting, error)
	DeleteSetting(ctx context.Context, id uint) error
}

type alertService struct {
	alertRepo   repository.AlertRepository
	settingRepo repository.AlertSettingRepository
	dispatcher  *AlertDispatcher
	logger      *logger.Logger

	mu         sync.Mutex
	recent     []model.Alert
	listeners  map[int]func([]model.Alert)
	listenerID int
}

func NewAlertService(alertRepo repository.AlertRepository, settingRepo repository.AlertSettingRepository, dispatcher *AlertDispatcher, log *logger.Logger) AlertService {
	return &alertService{
		alertRepo:   alertRepo,
		settingRepo: settingRepo,
		dispatcher:  dispatcher,
		logger:      log,
		listeners:   make(map[int]func([]model.Alert)),
	}
}

// Create persists the alert, then prepends it to the session list and notifies
// listeners. On a persistence failure the list is left untouched so listeners
// never see an alert that does not exist in the store.
func (s *alertService) Create(ctx context.Context, req dto.CreateAlertRequest) (*model.Alert, error) {
	alert := &model.Alert{
		UserID:      req.UserID,
		ExecutionID: req.ExecutionID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Severity:    req.Severity,
	}
	if alert.Severity == "" {
		alert.Severity = model.SeverityInfo
	}
	if len(req.Data) > 0 {
		raw, err := json.Marshal(req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal alert data: %w", err)
		}
		alert.Data = raw
	}

	if err := s.alertRepo.Create(ctx, alert); err != nil {
		s.logger.ErrorContext(ctx, "failed to create alert",
			logger.StringField("type", string(req.Type)),
			logger.ErrorField(err))
		return nil, err
	}

	s.mu.Lock()
	s.recent = append([]model.Alert{*alert}, s.recent...)
	if len(s.recent) > maxRecentAlerts {
		s.recent = s.recent[:maxRecentAlerts]
	}
	s.mu.Unlock()

	s.notifyListeners()
	return alert, nil
}

// CreateAndDispatch creates the alert and pushes it through the setting's
// delivery channel. A delivery failure does not undo the row.
func (s *alertService) CreateAndDispatch(ctx context.Context, req dto.CreateAlertRequest, setting model.AlertSetting) (*model.Alert, error) {
	alert, err := s.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, *alert, setting); err != nil {
		s.logger.ErrorContextWithAlert(ctx, "failed to dispatch alert",
			logger.IntField("alert_id", int(alert.ID)),
			logger.StringField("delivery_method", string(setting.DeliveryMethod)),
			logger.ErrorField(err))
	}
	return alert, nil
}

func (s *alertService) List(ctx context.Context, param dto.GetAlertsParam) ([]model.Alert, error) {
	return s.alertRepo.Get(ctx, param)
}

// Recent returns a copy of the in-memory session list.
func (s *alertService) Recent() []model.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Alert, len(s.recent))
	copy(out, s.recent)
	return out
}

// MarkAsRead flips the read flag. An unknown id is a no-op in the store but
// listeners are still re-notified, which keeps consumers converging on the
// same list either way.
func (s *alertService) MarkAsRead(ctx context.Context, id uint) error {
	if err := s.alertRepo.MarkRead(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.recent {
		if s.recent[i].ID == id {
			s.recent[i].Read = true
			break
		}
	}
	s.mu.Unlock()

	s.notifyListeners()
	return nil
}

func (s *alertService) MarkAllAsRead(ctx context.Context, userID uint) error {
	if err := s.alertRepo.MarkAllRead(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.recent {
		if s.recent[i].UserID == userID {
			s.recent[i].Read = true
		}
	}
	s.mu.Unlock()

	s.notifyListeners()
	return nil
}

func (s *alertService) SetPinned(ctx context.Context, id uint, pinned bool) error {
	alert, err := s.alertRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if alert == nil {
		return ErrNotFound
	}
	return s.alertRepo.SetPinned(ctx, id, pinned)
}

func (s *alertService) Delete(ctx context.Context, id uint) error {
	alert, err := s.alertRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if alert == nil {
		return ErrNotFound
	}

	if err := s.alertRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.recent {
		if s.recent[i].ID == id {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notifyListeners()
	return nil
}

func (s *alertService) AddListener(fn func([]model.Alert)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listenerID++
	s.listeners[s.listenerID] = fn
	return s.listenerID
}

func (s *alertService) RemoveListener(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

func (s *alertService) notifyListeners() {
	s.mu.Lock()
	snapshot := make([]model.Alert, len(s.recent))
	copy(snapshot, s.recent)
	fns := make([]func([]model.Alert), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// The Notify helpers are fire-and-forget: a failed alert must never break the
// bot flow that triggered it, so errors stop at the log.

func (s *alertService) NotifyProfitThreshold(ctx context.Context, userID, executionID uint, pair string, profit float64) {
	s.notify(ctx, dto.CreateAlertRequest{
		UserID:      userID,
		ExecutionID: utils.ToPointer(executionID),
		Type:        model.AlertTypeProfitThreshold,
		Title:       fmt.Sprintf("Profit target reached on %s", pair),
		Message:     fmt.Sprintf("Bot execution on %s is up %s.", pair, utils.FormatUSD(profit)),
		Severity:    model.SeveritySuccess,
	})
}

func (s *alertService) NotifyLossThreshold(ctx context.Context, userID, executionID uint, pair string, loss float64) {
	s.notify(ctx, dto.CreateAlertRequest{
		UserID:      userID,
		ExecutionID: utils.ToPointer(executionID),
		Type:        model.AlertTypeLossThreshold,
		Title:       fmt.Sprintf("Loss limit hit on %s", pair),
		Message:     fmt.Sprintf("Bot execution on %s is down %s.", pair, utils.FormatUSD(loss)),
		Severity:    model.SeverityWarning,
	})
}

func (s *alertService) NotifyEntrySignal(ctx context.Context, userID, executionID uint, pair, strategyName string) {
	s.notify(ctx, dto.CreateAlertRequest{
		UserID:      userID,
		ExecutionID: utils.ToPointer(executionID),
		Type:        model.AlertTypeEntrySignal,
		Title:       fmt.Sprintf("Entry signal on %s", pair),
		Message:     fmt.Sprintf("Strategy %q opened a position on %s.", strategyName, pair),
		Severity:    model.SeverityInfo,
	})
}

func (s *alertService) NotifyExitSignal(ctx context.Context, userID, executionID uint, pair string, profit float64) {
	s.notify(ctx, dto.CreateAlertRequest{
		UserID:      userID,
		ExecutionID: utils.ToPointer(executionID),
		Type:        model.AlertTypeExitSignal,
		Title:       fmt.Sprintf("Position closed on %s", pair),
		Message:     fmt.Sprintf("Closed %s with %s realized.", pair, utils.FormatUSD(profit)),
		Severity:    model.SeverityInfo,
	})
}

func (s *alertService) NotifyBotError(ctx context.Context, userID, executionID uint, pair string, cause error) {
	s.notify(ctx, dto.CreateAlertRequest{
		UserID:      userID,
		ExecutionID: utils.ToPointer(executionID),
		Type:        model.AlertTypeBotError,
		Title:       fmt.Sprintf("Bot error on %s", pair),
		Message:     fmt.Sprintf("Bot execution on %s stopped: %v", pair, cause),
		Severity:    model.SeverityError,
	})
}

func (s *alertService) NotifyPerformanceMilestone(ctx context.Context, userID, executionID uint, pair string, roi float64) {
	s.notify(ctx, dto.CreateAlertRequest{
		UserID:      userID,
		ExecutionID: utils.ToPointer(executionID),
		Type:        model.AlertTypePerformanceMilestone,
		Title:       fmt.Sprintf("Milestone on %s", pair),
		Message:     fmt.Sprintf("Bot execution on %s reached %s ROI.", pair, utils.FormatPercentage(roi)),
		Severity:    model.SeveritySuccess,
	})
}

func (s *alertService) notify(ctx context.Context, req dto.CreateAlertRequest) {
	if _, err := s.Create(ctx, req); err != nil {
		s.logger.ErrorContext(ctx, "failed to create bot notification",
			logger.StringField("type", string(req.Type)),
			logger.ErrorField(err))
	}
}

func (s *alertService) CreateSetting(ctx context.Context, req dto.CreateAlertSettingRequest) (*model.AlertSetting, error) {
	setting := &model.AlertSetting{
		UserID:         req.UserID,
		AlertType:      req.AlertType,
		Enabled:        true,
		Threshold:      req.Threshold,
		DeliveryMethod: req.DeliveryMethod,
	}
	if req.Enabled != nil {
		setting.Enabled = *req.Enabled
	}
	if setting.DeliveryMethod == "" {
		setting.DeliveryMethod = model.DeliveryInApp
	}
	setting.Config = datatypes.NewJSONType(req.Config)

	if err := s.settingRepo.Create(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *alertService) GetSettings(ctx context.Context, userID uint) ([]model.AlertSetting, error) {
	return s.settingRepo.GetByUser(ctx, userID)
}

func (s *alertService) UpdateSetting(ctx context.Context, id uint, req dto.UpdateAlertSettingRequest) (*model.AlertSetting, error) {
	setting, err := s.settingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, ErrNotFound
	}

	if req.Enabled != nil {
		setting.Enabled = *req.Enabled
	}
	if req.Threshold != nil {
		setting.Threshold = req.Threshold
	}
	if req.DeliveryMethod != "" {
		setting.DeliveryMethod = req.DeliveryMethod
	}
	setting.Config = datatypes.NewJSONType(req.Config)

	if err := s.settingRepo.Update(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *alertService) DeleteSetting(ctx context.Context, id uint) error {
	setting, err := s.settingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if setting == nil {
		return ErrNotFound
	}
	return s.settingRepo.Delete(ctx, id)
}
