package service

import (
	"context"

	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/internal/screener"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/utils"

	"gorm.io/datatypes"
)

type ScreenerService interface {
	Create(ctx context.Context, req dto.CreateScreenerRequest) (*model.Screener, error)
	GetByUser(ctx context.Context, userID uint) ([]model.Screener, error)
	GetByID(ctx context.Context, id uint) (*model.Screener, error)
	Update(ctx context.Context, id uint, req dto.UpdateScreenerRequest) (*model.Screener, error)
	Delete(ctx context.Context, id uint) error
	AddSymbol(ctx context.Context, id uint, symbol string) (*model.Screener, error)
	RemoveSymbol(ctx context.Context, id uint, symbol string) (*model.Screener, error)
	Matches(ctx context.Context, id uint) (*dto.ScreenerMatchesResponse, error)
}

type screenerService struct {
	screenerRepo repository.ScreenerRepository
	futuresRepo  repository.FuturesDataRepository
	logger       *logger.Logger
}

func NewScreenerService(screenerRepo repository.ScreenerRepository, futuresRepo repository.FuturesDataRepository, log *logger.Logger) ScreenerService {
	return &screenerService{
		screenerRepo: screenerRepo,
		futuresRepo:  futuresRepo,
		logger:       log,
	}
}

func (s *screenerService) Create(ctx context.Context, req dto.CreateScreenerRequest) (*model.Screener, error) {
	scr := &model.Screener{
		UserID:   req.UserID,
		Name:     req.Name,
		Color:    req.Color,
		Symbols:  datatypes.NewJSONSlice(req.Symbols),
		Starred:  req.Starred,
		Criteria: datatypes.NewJSONType(req.Criteria),
	}
	if err := s.screenerRepo.Create(ctx, scr); err != nil {
		return nil, err
	}
	return scr, nil
}

func (s *screenerService) GetByUser(ctx context.Context, userID uint) ([]model.Screener, error) {
	return s.screenerRepo.GetByUser(ctx, userID)
}

func (s *screenerService) GetByID(ctx context.Context, id uint) (*model.Screener, error) {
	scr, err := s.screenerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scr == nil {
		return nil, ErrNotFound
	}
	return scr, nil
}

func (s *screenerService) Update(ctx context.Context, id uint, req dto.UpdateScreenerRequest) (*model.Screener, error) {
	scr, err := s.screenerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scr == nil {
		return nil, ErrNotFound
	}

	scr.Name = req.Name
	scr.Color = req.Color
	scr.Symbols = datatypes.NewJSONSlice(req.Symbols)
	scr.Starred = req.Starred
	scr.Criteria = datatypes.NewJSONType(req.Criteria)

	if err := s.screenerRepo.Update(ctx, scr); err != nil {
		return nil, err
	}
	return scr, nil
}

func (s *screenerService) Delete(ctx context.Context, id uint) error {
	scr, err := s.screenerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if scr == nil {
		return ErrNotFound
	}
	return s.screenerRepo.Delete(ctx, id)
}

// AddSymbol appends one trading pair. A pair already present is a conflict,
// not a silent no-op, so the caller can tell the user.
func (s *screenerService) AddSymbol(ctx context.Context, id uint, symbol string) (*model.Screener, error) {
	scr, err := s.screenerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scr == nil {
		return nil, ErrNotFound
	}

	if utils.ContainsString(scr.Symbols, symbol) {
		return nil, ErrPairAlreadyExists
	}

	scr.Symbols = append(scr.Symbols, symbol)
	if err := s.screenerRepo.Update(ctx, scr); err != nil {
		return nil, err
	}
	return scr, nil
}

func (s *screenerService) RemoveSymbol(ctx context.Context, id uint, symbol string) (*model.Screener, error) {
	scr, err := s.screenerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scr == nil {
		return nil, ErrNotFound
	}

	kept := make([]string, 0, len(scr.Symbols))
	for _, sym := range scr.Symbols {
		if sym != symbol {
			kept = append(kept, sym)
		}
	}
	scr.Symbols = datatypes.NewJSONSlice(kept)

	if err := s.screenerRepo.Update(ctx, scr); err != nil {
		return nil, err
	}
	return scr, nil
}

// Matches evaluates the screener's criteria against the stored futures
// snapshots. A screener with an explicit symbol list is evaluated over those
// symbols only; otherwise the whole market is scanned.
func (s *screenerService) Matches(ctx context.Context, id uint) (*dto.ScreenerMatchesResponse, error) {
	scr, err := s.screenerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scr == nil {
		return nil, ErrNotFound
	}

	criteria := scr.Criteria.Data()

	var rows []model.FuturesData
	if len(scr.Symbols) > 0 {
		rows, err = s.futuresRepo.GetBySymbols(ctx, scr.Symbols)
	} else {
		rows, err = s.futuresRepo.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	matches := make([]model.FuturesData, 0, len(rows))
	for _, row := range rows {
		if screener.Matches(screener.TickFromFuturesData(row), criteria) {
			matches = append(matches, row)
		}
	}

	return &dto.ScreenerMatchesResponse{
		ScreenerID: scr.ID,
		Matches:    matches,
	}, nil
}
