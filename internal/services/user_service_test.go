package services

import (
	"context"
	"log/slog"
	"net/url"
	"testing"

	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"
	"github.com/epson121/budget/internal/repositories/repository_mocks"
	"github.com/epson121/budget/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	userRepo    *repository_mocks.MockUserRepositoryInterface
	txRepo      *repository_mocks.MockTransactionRepositoryInterface
	filters     *service_mocks.MockFilterEngineInterface
	auditLogger *service_mocks.MockAuditLoggerInterface
	metrics     *service_mocks.MockMetricsRecorderInterface
	service     UserServiceInterface
	userID      uuid.UUID
}

func (s *UserServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.txRepo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.filters = service_mocks.NewMockFilterEngineInterface(s.ctrl)
	s.auditLogger = service_mocks.NewMockAuditLoggerInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.metrics.EXPECT().RecordProcessingTime(MetricSummaryDuration, gomock.Any()).AnyTimes()
	s.service = NewUserService(s.userRepo, s.txRepo, s.filters, s.auditLogger, s.metrics, slog.Default())
	s.userID = uuid.New()
}

func (s *UserServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) TestStatus() {
	s.userRepo.EXPECT().GetByID(s.userID).Return(&models.User{
		ID:       s.userID,
		Username: "marta",
		Balance:  decimal.RequireFromString("-12.40"),
	}, nil)

	status, err := s.service.Status(s.userID)
	s.Require().NoError(err)
	s.Equal("marta", status.Username)
	s.True(status.Balance.Equal(decimal.RequireFromString("-12.40")))
}

func (s *UserServiceTestSuite) TestStatus_NotFound() {
	s.userRepo.EXPECT().GetByID(s.userID).Return(nil, repositories.ErrUserNotFound)

	_, err := s.service.Status(s.userID)
	s.Equal(ErrUserNotFound, err)
}

func (s *UserServiceTestSuite) TestSummary_RestrictsFilters() {
	values := url.Values{"created_at[gte]": {"2024-01-01"}}
	query := models.TransactionQuery{UserID: s.userID}

	s.filters.EXPECT().BuildTransactionQuery(s.userID, values, models.FilterOptions{
		OnlyFields:      []string{"created_at"},
		DisableOrdering: true,
	}).Return(query, nil)
	s.txRepo.EXPECT().FindByQuery(query).Return([]models.Transaction{
		summaryTx(models.TransactionTypeExpense, "10.25"),
		summaryTx(models.TransactionTypeDeposit, "100"),
		summaryTx(models.TransactionTypeExpense, "4.75"),
	}, nil)

	summary, err := s.service.Summary(context.Background(), s.userID, values)
	s.Require().NoError(err)
	s.Equal(models.TypeCounts{Expense: 2, Deposit: 1}, summary.Count)
	s.True(summary.Total.Expense.Equal(decimal.NewFromInt(15)))
	s.True(summary.Total.Deposit.Equal(decimal.NewFromInt(100)))
}

func (s *UserServiceTestSuite) TestSummary_RejectedFilter() {
	values := url.Values{"amount[gt]": {"5"}}

	s.filters.EXPECT().BuildTransactionQuery(s.userID, values, gomock.Any()).Return(models.TransactionQuery{}, ErrUnknownFilterField)
	s.metrics.EXPECT().IncrementCounter(MetricFilterRejected, gomock.Nil())
	s.auditLogger.EXPECT().LogFilterRejected(gomock.Any(), s.userID, values.Encode(), ErrUnknownFilterField)

	_, err := s.service.Summary(context.Background(), s.userID, values)
	s.ErrorIs(err, ErrUnknownFilterField)
}

func (s *UserServiceTestSuite) TestSummary_UnknownStoredType() {
	s.filters.EXPECT().BuildTransactionQuery(s.userID, gomock.Any(), gomock.Any()).Return(models.TransactionQuery{UserID: s.userID}, nil)
	s.txRepo.EXPECT().FindByQuery(gomock.Any()).Return([]models.Transaction{summaryTx("transfer", "1")}, nil)

	_, err := s.service.Summary(context.Background(), s.userID, url.Values{})
	s.ErrorIs(err, ErrUnknownTransactionType)
}
