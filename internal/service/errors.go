package service

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already registered")
	ErrPairAlreadyExists  = errors.New("pair already in folder")
	ErrFolderEmpty        = errors.New("folder has no trading pairs")
	ErrFolderHasActiveBot = errors.New("folder already has active bots")
	ErrNoMarketData       = errors.New("no market data for symbol")
)
