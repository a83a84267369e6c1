package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"
	"github.com/epson121/budget/internal/repositories/repository_mocks"
	"github.com/epson121/budget/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	repo        *repository_mocks.MockLedgerRepositoryInterface
	auditLogger *service_mocks.MockAuditLoggerInterface
	metrics     *service_mocks.MockMetricsRecorderInterface
	service     LedgerServiceInterface
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = repository_mocks.NewMockLedgerRepositoryInterface(s.ctrl)
	s.auditLogger = service_mocks.NewMockAuditLoggerInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.metrics.EXPECT().RecordProcessingTime(MetricLedgerDuration, gomock.Any()).AnyTimes()
	s.service = NewLedgerService(s.repo, s.auditLogger, s.metrics, slog.Default())
}

func (s *LedgerServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func ledgerTx(userID uuid.UUID, kind, amount string) *models.Transaction {
	return &models.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: uuid.New(),
		Type:       kind,
		Amount:     decimal.RequireFromString(amount),
	}
}

func (s *LedgerServiceTestSuite) TestApply_Success() {
	tx := ledgerTx(uuid.New(), models.TransactionTypeDeposit, "100")
	event := models.NewCreatedEvent(tx)

	s.repo.EXPECT().Record(gomock.Any(), event).Return(decimal.NewFromInt(100), nil)
	s.metrics.EXPECT().IncrementCounter(MetricTransactionWrite, map[string]string{"operation": "created"})
	s.auditLogger.EXPECT().LogBalanceUpdate(gomock.Any(), tx.UserID, tx.ID, models.LedgerEventCreated,
		decimal.NewFromInt(100), decimal.NewFromInt(100))

	balance, err := s.service.Apply(context.Background(), event)
	s.NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(100)))
}

func (s *LedgerServiceTestSuite) TestApply_PersistenceFailureIsWrapped() {
	tx := ledgerTx(uuid.New(), models.TransactionTypeExpense, "10")
	cause := errors.New("connection reset")

	s.repo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(decimal.Zero, cause)
	s.metrics.EXPECT().IncrementCounter(MetricLedgerFailure, map[string]string{"operation": "deleted"})
	s.auditLogger.EXPECT().LogLedgerFailure(gomock.Any(), tx.UserID, tx.ID, models.LedgerEventDeleted, cause)

	_, err := s.service.Apply(context.Background(), models.NewDeletedEvent(tx))
	s.ErrorIs(err, ErrLedgerPersistence)
	s.ErrorIs(err, cause)
}

func (s *LedgerServiceTestSuite) TestApply_ClientErrorsPassThrough() {
	tx := ledgerTx(uuid.New(), models.TransactionTypeExpense, "10")

	for _, cause := range []error{repositories.ErrTransactionNotFound, repositories.ErrCategoryNotFound, repositories.ErrUserNotFound} {
		s.repo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(decimal.Zero, cause)
		s.metrics.EXPECT().IncrementCounter(MetricTransactionWrite, gomock.Any())

		_, err := s.service.Apply(context.Background(), models.NewUpdatedEvent(tx, tx))
		s.ErrorIs(err, cause)
		s.NotErrorIs(err, ErrLedgerPersistence)
	}
}

func (s *LedgerServiceTestSuite) TestApply_EmptyEvent() {
	_, err := s.service.Apply(context.Background(), models.LedgerEvent{Kind: models.LedgerEventCreated})
	s.ErrorIs(err, repositories.ErrInvalidLedgerEvent)
}

// serialRepo records how many Record calls overlap per user.
type serialRepo struct {
	mu       sync.Mutex
	inFlight map[uuid.UUID]int
	maxSeen  int32
	balance  map[uuid.UUID]decimal.Decimal
}

func (r *serialRepo) Record(ctx context.Context, event models.LedgerEvent) (decimal.Decimal, error) {
	userID := event.Subject().UserID

	r.mu.Lock()
	r.inFlight[userID]++
	if n := int32(r.inFlight[userID]); n > atomic.LoadInt32(&r.maxSeen) {
		atomic.StoreInt32(&r.maxSeen, n)
	}
	current := r.balance[userID]
	r.mu.Unlock()

	// widen the read-modify-write window
	time.Sleep(time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.balance[userID] = current.Add(event.BalanceDelta())
	r.inFlight[userID]--
	return r.balance[userID], nil
}

func (s *LedgerServiceTestSuite) TestApply_SerializesPerUser() {
	repo := &serialRepo{inFlight: map[uuid.UUID]int{}, balance: map[uuid.UUID]decimal.Decimal{}}
	s.metrics.EXPECT().IncrementCounter(gomock.Any(), gomock.Any()).AnyTimes()
	s.auditLogger.EXPECT().LogBalanceUpdate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	service := NewLedgerService(repo, s.auditLogger, s.metrics, slog.Default())

	userID := uuid.New()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Apply(context.Background(), models.NewCreatedEvent(ledgerTx(userID, models.TransactionTypeDeposit, "2")))
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Equal(int32(1), atomic.LoadInt32(&repo.maxSeen))
	s.True(repo.balance[userID].Equal(decimal.NewFromInt(50)))
	s.Equal(0, service.(*LedgerService).locks.size())
}

func (s *LedgerServiceTestSuite) TestUserLocks_ContextCancelledWhileWaiting() {
	locks := newUserLocks()
	userID := uuid.New()

	release, err := locks.acquire(context.Background(), userID)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = locks.acquire(ctx, userID)
	s.ErrorIs(err, context.DeadlineExceeded)

	release()
	s.Equal(0, locks.size())

	release, err = locks.acquire(context.Background(), userID)
	s.NoError(err)
	release()
}
