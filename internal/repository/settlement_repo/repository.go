package settlement_repo

import (
	"context"
	"errors"
	"minigames_backend/internal/model"
	"minigames_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table        = "settlements"
	colID        = "id"
	colSessionID = "session_id"
	colUserID    = "user_id"
	colVariant   = "variant"
	colOutcome   = "outcome"
	colWagered   = "wagered"
	colReturned  = "returned"
	colNetDelta  = "net_delta"
	colCreatedAt = "created_at"

	uniqueViolation = "23505"
)

var columns = []string{colID, colSessionID, colUserID, colVariant, colOutcome, colWagered, colReturned, colNetDelta, colCreatedAt}

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewSettlementRepository(dbc *pgxpool.Pool) repository.SettlementRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// Append - добавляет запись. Вторая запись по той же сессии отклоняется
func (r *repo) Append(ctx context.Context, rec *model.SettlementRecord) error {
	query := sq.Insert(table).
		Columns(colSessionID, colUserID, colVariant, colOutcome, colWagered, colReturned, colNetDelta, colCreatedAt).
		Values(rec.SessionID, rec.UserID, string(rec.Variant), string(rec.Outcome), rec.Wagered, rec.Returned, rec.NetDelta, rec.CreatedAt).
		Suffix("RETURNING " + colID).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrSettlementExists
		}
		return err
	}

	return nil
}

// BySession - запись по идентификатору сессии
func (r *repo) BySession(ctx context.Context, sessionID string) (*model.SettlementRecord, error) {
	query := sq.Select(columns...).
		From(table).
		Where(sq.Eq{colSessionID: sessionID}).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rec, err := scanRecord(r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSettlementNotFound
		}
		return nil, err
	}

	return &rec, nil
}

// ListByUser - последние записи пользователя
func (r *repo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.SettlementRecord, error) {
	query := sq.Select(columns...).
		From(table).
		Where(sq.Eq{colUserID: userID}).
		OrderBy(colID + " DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.getter.DefaultTrOrDB(ctx, r.dbc).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SettlementRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

func scanRecord(row pgx.Row) (model.SettlementRecord, error) {
	var (
		rec              model.SettlementRecord
		variant, outcome string
	)
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.UserID, &variant, &outcome, &rec.Wagered, &rec.Returned, &rec.NetDelta, &rec.CreatedAt)
	if err != nil {
		return model.SettlementRecord{}, err
	}
	rec.Variant = model.Variant(variant)
	rec.Outcome = model.SettlementOutcome(outcome)
	return rec, nil
}
