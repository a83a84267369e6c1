package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrLedgerPersistence means the transaction write and balance adjustment
// were rolled back. Callers must report it as a server error.
var ErrLedgerPersistence = errors.New("failed to persist balance change")

// LedgerService serializes balance-affecting writes per user and hands each
// event to the repository that applies it in one database transaction.
type LedgerService struct {
	repo        repositories.LedgerRepositoryInterface
	auditLogger AuditLoggerInterface
	metrics     MetricsRecorderInterface
	logger      *slog.Logger
	locks       *userLocks
}

func NewLedgerService(
	repo repositories.LedgerRepositoryInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) LedgerServiceInterface {
	return &LedgerService{
		repo:        repo,
		auditLogger: auditLogger,
		metrics:     metrics,
		logger:      logger,
		locks:       newUserLocks(),
	}
}

// Apply persists event and returns the owner's new balance.
func (s *LedgerService) Apply(ctx context.Context, event models.LedgerEvent) (decimal.Decimal, error) {
	subject := event.Subject()
	if subject == nil || subject.UserID == uuid.Nil {
		return decimal.Zero, repositories.ErrInvalidLedgerEvent
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordProcessingTime(MetricLedgerDuration, time.Since(start))
	}()

	release, err := s.locks.acquire(ctx, subject.UserID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to acquire ledger lock: %w", err)
	}
	defer release()

	balance, err := s.repo.Record(ctx, event)
	if err != nil {
		if isLedgerClientError(err) {
			s.metrics.IncrementCounter(MetricTransactionWrite, map[string]string{
				"operation": string(event.Kind),
				"status":    "rejected",
			})
			return decimal.Zero, err
		}

		s.metrics.IncrementCounter(MetricLedgerFailure, map[string]string{"operation": string(event.Kind)})
		s.auditLogger.LogLedgerFailure(ctx, subject.UserID, subject.ID, event.Kind, err)
		return decimal.Zero, fmt.Errorf("%w: %w", ErrLedgerPersistence, err)
	}

	s.metrics.IncrementCounter(MetricTransactionWrite, map[string]string{"operation": string(event.Kind)})
	s.auditLogger.LogBalanceUpdate(ctx, subject.UserID, subject.ID, event.Kind, event.BalanceDelta(), balance)

	return balance, nil
}

// isLedgerClientError reports errors caused by the request rather than by storage.
func isLedgerClientError(err error) bool {
	return errors.Is(err, repositories.ErrTransactionNotFound) ||
		errors.Is(err, repositories.ErrCategoryNotFound) ||
		errors.Is(err, repositories.ErrUserNotFound) ||
		errors.Is(err, repositories.ErrInvalidLedgerEvent)
}

// userLocks is a set of per-user mutexes. Entries are dropped once no
// goroutine holds or waits on them.
type userLocks struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*userSlot
}

type userSlot struct {
	ch   chan struct{}
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{slots: make(map[uuid.UUID]*userSlot)}
}

func (l *userLocks) acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[userID]
	if !ok {
		slot = &userSlot{ch: make(chan struct{}, 1)}
		l.slots[userID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			l.drop(userID, slot)
		}, nil
	case <-ctx.Done():
		l.drop(userID, slot)
		return nil, ctx.Err()
	}
}

func (l *userLocks) drop(userID uuid.UUID, slot *userSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, userID)
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
