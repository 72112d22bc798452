package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// TxFunc runs inside one database transaction. It must use exec for every statement.
type TxFunc func(ctx context.Context, exec SQLExecutor) error

type Transactor interface {
	// WithinTransaction runs fn atomically. Contended transactions are retried with a bounded
	// backoff; exhaustion yields ErrTxContention. Errors returned by fn are never retried
	// unless they are contention errors themselves.
	WithinTransaction(ctx context.Context, fn TxFunc) error
}

type TxOptions struct {
	MaxAttempts    uint
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	LockTimeout    time.Duration
}

type postgresTransactor struct {
	db     *sql.DB
	opts   TxOptions
	logger *slog.Logger
}

func NewPostgresTransactor(db *sql.DB, opts TxOptions, logger *slog.Logger) Transactor {
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 1
	}
	return &postgresTransactor{db: db, opts: opts, logger: logger}
}

func (t *postgresTransactor) WithinTransaction(ctx context.Context, fn TxFunc) error {
	b := backoff.NewExponentialBackOff()
	if t.opts.InitialBackoff > 0 {
		b.InitialInterval = t.opts.InitialBackoff
	}
	if t.opts.MaxBackoff > 0 {
		b.MaxInterval = t.opts.MaxBackoff
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := t.runOnce(ctx, fn)
		if err == nil || IsContention(err) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(t.opts.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			t.logger.Warn("retrying contended transaction",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", next),
				slog.Any("error", err))
		}),
	)
	if err == nil {
		return nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if IsContention(err) {
		return fmt.Errorf("%w after %d attempts: %v", ErrTxContention, attempt, err)
	}
	return err
}

func (t *postgresTransactor) runOnce(ctx context.Context, fn TxFunc) (txErr error) {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				t.logger.Error("rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	if t.opts.LockTimeout > 0 {
		// SET LOCAL не принимает параметры, значение формируется из конфигурации.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.opts.LockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	return fn(ctx, tx)
}
