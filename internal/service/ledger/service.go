package ledger

import (
	"context"
	"errors"
	"minigames_backend/internal/model"
	"minigames_backend/internal/repository"
	"minigames_backend/internal/service"
	"minigames_backend/pkg/logger"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"go.uber.org/zap"
)

// defaultListLimit Сколько записей отдавать, если лимит не задан
const defaultListLimit = 50

type serv struct {
	wallet    service.WalletService
	repo      repository.SettlementRepository
	statsRepo repository.StatsRepository
	txManager trm.Manager
}

// NewLedgerService Журнал завершённых раундов
func NewLedgerService(
	wallet service.WalletService,
	repo repository.SettlementRepository,
	statsRepo repository.StatsRepository,
	txManager trm.Manager,
) service.LedgerService {
	return &serv{
		wallet:    wallet,
		repo:      repo,
		statsRepo: statsRepo,
		txManager: txManager,
	}
}

// Settle выплата и запись о раунде в одной транзакции.
// Повтор для уже записанной сессии ничего не меняет и возвращает текущий баланс
func (s *serv) Settle(ctx context.Context, rec *model.SettlementRecord, credit int64) (*model.Receipt, error) {
	var receipt *model.Receipt

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.repo.Append(txCtx, rec); err != nil {
			return err
		}

		var err error
		receipt, err = s.wallet.Credit(txCtx, rec.UserID, credit)
		return err
	})
	if errors.Is(err, model.ErrSettlementExists) {
		logger.Warn("session already settled", zap.String("session_id", rec.SessionID))
		balance, balErr := s.wallet.Balance(ctx, rec.UserID)
		if balErr != nil {
			return nil, balErr
		}
		return &model.Receipt{UserID: rec.UserID, Balance: balance}, nil
	}
	if err != nil {
		return nil, err
	}

	s.statsRepo.UpdateState(rec.Variant, rec.Wagered, rec.Returned)

	logger.Debug("round settled",
		zap.String("session_id", rec.SessionID),
		zap.Int64("user_id", rec.UserID),
		zap.String("variant", string(rec.Variant)),
		zap.String("outcome", string(rec.Outcome)),
		zap.Int64("net_delta", rec.NetDelta),
	)

	return receipt, nil
}

func (s *serv) BySession(ctx context.Context, sessionID string) (*model.SettlementRecord, error) {
	return s.repo.BySession(ctx, sessionID)
}

// List последние записи пользователя, новые первыми
func (s *serv) List(ctx context.Context, userID int64, limit int) ([]model.SettlementRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *serv) Stats() []model.VariantStats {
	return s.statsRepo.Snapshot()
}
