package wallet_repo

import (
	"context"
	"errors"
	"minigames_backend/internal/model"
	"minigames_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table        = "wallets"
	colUserID    = "user_id"
	colBalance   = "balance"
	colUpdatedAt = "updated_at"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewWalletRepository(dbc *pgxpool.Pool) repository.WalletRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// Create - создаёт кошелёк, если его ещё нет
func (r *repo) Create(ctx context.Context, userID int64, balance int64) error {
	query := sq.Insert(table).
		Columns(colUserID, colBalance).
		Values(userID, balance).
		Suffix("ON CONFLICT (" + colUserID + ") DO NOTHING").
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}

// Balance - текущий баланс кошелька
func (r *repo) Balance(ctx context.Context, userID int64) (int64, error) {
	query := sq.Select(colBalance).
		From(table).
		Where(sq.Eq{colUserID: userID}).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var balance int64
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrWalletNotFound
		}
		return 0, err
	}

	return balance, nil
}

// Debit - списание одним условным UPDATE, поэтому баланс не уходит в минус
// даже при параллельных запросах к одному кошельку
func (r *repo) Debit(ctx context.Context, userID int64, amount int64) (int64, error) {
	query := sq.Update(table).
		Set(colBalance, sq.Expr(colBalance+" - ?", amount)).
		Set(colUpdatedAt, sq.Expr("now()")).
		Where(sq.Eq{colUserID: userID}).
		Where(sq.GtOrEq{colBalance: amount}).
		Suffix("RETURNING " + colBalance).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var balance int64
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Строка не обновилась: либо кошелька нет, либо денег не хватает
			if _, balErr := r.Balance(ctx, userID); balErr != nil {
				return 0, balErr
			}
			return 0, model.ErrInsufficientFunds
		}
		return 0, err
	}

	return balance, nil
}

// Credit - зачисление
func (r *repo) Credit(ctx context.Context, userID int64, amount int64) (int64, error) {
	query := sq.Update(table).
		Set(colBalance, sq.Expr(colBalance+" + ?", amount)).
		Set(colUpdatedAt, sq.Expr("now()")).
		Where(sq.Eq{colUserID: userID}).
		Suffix("RETURNING " + colBalance).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var balance int64
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrWalletNotFound
		}
		return 0, err
	}

	return balance, nil
}
