package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	"github.com/SscSPs/settlement_engine/internal/middleware"
	"github.com/jackc/pgx/v5"
)

// BaseService provides common functionality for all services
type BaseService struct {
	TxManager portsrepo.TransactionManager
	// Now is the clock used for every timestamp a service writes.
	Now func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

func (s *BaseService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// rollback is deferred right after Begin; it is a no-op once the tx is committed.
func (s *BaseService) rollback(ctx context.Context, tx pgx.Tx) {
	if err := s.TxManager.Rollback(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to roll back transaction")
	}
}

// commitPosting commits a tx that wrote ledger entries. Once the commit is sent its
// outcome cannot be assumed, so the entry ids are handed back for re-querying.
func (s *BaseService) commitPosting(ctx context.Context, tx pgx.Tx, entries []string) error {
	if err := s.TxManager.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Commit failed after ledger writes", slog.Any("entry_ids", entries))
		return &apperrors.PostingError{Uncertain: true, EntryIDs: entries, Err: err}
	}
	return nil
}
