package model

import (
	"errors"
	"fmt"
)

// Отказы ядра. Ни один из них не меняет ни кошелёк, ни состояние раунда
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrSessionAlreadyActive = errors.New("session already active")
	ErrSessionNotActive     = errors.New("session not active")
	ErrInvalidCell          = errors.New("invalid cell")
	ErrInvalidBet           = errors.New("invalid bet amount")
	ErrUnknownVariant       = errors.New("unknown game variant")
	ErrUnknownTheme         = errors.New("unknown reel theme")
	ErrClosed               = errors.New("game service is shutting down")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrSettlementNotFound   = errors.New("settlement not found")
	ErrSettlementExists     = errors.New("session already settled")

	// ErrCellRevealed повторное открытие клетки, частный случай ErrInvalidCell
	ErrCellRevealed = fmt.Errorf("%w: cell already revealed", ErrInvalidCell)
	// ErrBetTooLarge ставка выше максимальной, частный случай ErrInvalidBet
	ErrBetTooLarge = fmt.Errorf("%w: above maximum bet", ErrInvalidBet)
)
