package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/epson121/budget/internal/dto"
	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"
	"github.com/epson121/budget/internal/repositories/repository_mocks"
	"github.com/epson121/budget/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	txRepo       *repository_mocks.MockTransactionRepositoryInterface
	categoryRepo *repository_mocks.MockCategoryRepositoryInterface
	ledger       *service_mocks.MockLedgerServiceInterface
	filters      *service_mocks.MockFilterEngineInterface
	audit        *service_mocks.MockAuditServiceInterface
	auditLogger  *service_mocks.MockAuditLoggerInterface
	metrics      *service_mocks.MockMetricsRecorderInterface
	service      TransactionServiceInterface
	ctx          context.Context
	userID       uuid.UUID
	category     *models.Category
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.txRepo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.categoryRepo = repository_mocks.NewMockCategoryRepositoryInterface(s.ctrl)
	s.ledger = service_mocks.NewMockLedgerServiceInterface(s.ctrl)
	s.filters = service_mocks.NewMockFilterEngineInterface(s.ctrl)
	s.audit = service_mocks.NewMockAuditServiceInterface(s.ctrl)
	s.auditLogger = service_mocks.NewMockAuditLoggerInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.service = NewTransactionService(s.txRepo, s.categoryRepo, s.ledger, s.filters, s.audit, s.auditLogger, s.metrics, slog.Default())

	s.ctx = context.Background()
	s.userID = uuid.New()
	s.category = &models.Category{ID: uuid.New(), UserID: s.userID, Name: "Food"}
}

func (s *TransactionServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func strPtr(v string) *string { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func (s *TransactionServiceTestSuite) createInput() dto.TransactionInput {
	return dto.TransactionInput{
		Amount:      decPtr("20.50"),
		Type:        strPtr(models.TransactionTypeExpense),
		CreatedAt:   strPtr("2024-03-01 12:00:00"),
		CategoryID:  &s.category.ID,
		Description: strPtr("lunch"),
	}
}

func (s *TransactionServiceTestSuite) stored() *models.Transaction {
	return &models.Transaction{
		ID:          uuid.New(),
		UserID:      s.userID,
		CategoryID:  s.category.ID,
		Amount:      decimal.NewFromInt(100),
		Type:        models.TransactionTypeDeposit,
		Description: "salary",
		CreatedAt:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Category:    s.category,
	}
}

func (s *TransactionServiceTestSuite) TestCreate_AppliesCreatedEvent() {
	s.categoryRepo.EXPECT().GetByIDForUser(s.category.ID, s.userID).Return(s.category, nil)
	s.ledger.EXPECT().Apply(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, event models.LedgerEvent) (decimal.Decimal, error) {
		s.Equal(models.LedgerEventCreated, event.Kind)
		s.Nil(event.Before)
		s.Equal(s.userID, event.After.UserID)
		s.True(event.BalanceDelta().Equal(decimal.RequireFromString("-20.50")))
		return decimal.RequireFromString("-20.50"), nil
	})
	s.audit.EXPECT().LogResourceChange(s.ctx, s.userID, models.AuditActionCreate, models.AuditResourceTransaction, gomock.Any(), gomock.Any())

	tx, err := s.service.Create(s.ctx, s.userID, s.createInput())
	s.Require().NoError(err)
	s.Equal("lunch", tx.Description)
	s.Equal(s.category, tx.Category)
	s.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), tx.CreatedAt)
}

func (s *TransactionServiceTestSuite) TestCreate_RejectsInvalidInput() {
	cases := map[string]func(in *dto.TransactionInput){
		"missing amount": func(in *dto.TransactionInput) { in.Amount = nil },
		"zero amount":    func(in *dto.TransactionInput) { in.Amount = decPtr("0") },
		"negative":       func(in *dto.TransactionInput) { in.Amount = decPtr("-5") },
		"three decimals": func(in *dto.TransactionInput) { in.Amount = decPtr("1.005") },
		"bad type":       func(in *dto.TransactionInput) { in.Type = strPtr("refund") },
		"bad date":       func(in *dto.TransactionInput) { in.CreatedAt = strPtr("yesterday") },
		"nil category":   func(in *dto.TransactionInput) { nilID := uuid.Nil; in.CategoryID = &nilID },
	}

	for name, mutate := range cases {
		input := s.createInput()
		mutate(&input)
		_, err := s.service.Create(s.ctx, s.userID, input)
		s.ErrorIs(err, ErrInvalidTransaction, name)
	}
}

func (s *TransactionServiceTestSuite) TestCreate_ForeignCategory() {
	s.categoryRepo.EXPECT().GetByIDForUser(s.category.ID, s.userID).Return(nil, repositories.ErrCategoryNotFound)

	_, err := s.service.Create(s.ctx, s.userID, s.createInput())
	s.Equal(ErrCategoryNotFound, err)
}

func (s *TransactionServiceTestSuite) TestCreate_LedgerFailure() {
	s.categoryRepo.EXPECT().GetByIDForUser(s.category.ID, s.userID).Return(s.category, nil)
	s.ledger.EXPECT().Apply(s.ctx, gomock.Any()).Return(decimal.Zero, ErrLedgerPersistence)

	_, err := s.service.Create(s.ctx, s.userID, s.createInput())
	s.ErrorIs(err, ErrLedgerPersistence)
}

func (s *TransactionServiceTestSuite) TestUpdate_PartialTypeFlip() {
	current := s.stored()

	s.txRepo.EXPECT().GetByIDForUser(current.ID, s.userID).Return(current, nil)
	s.ledger.EXPECT().Apply(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, event models.LedgerEvent) (decimal.Decimal, error) {
		s.Equal(models.LedgerEventUpdated, event.Kind)
		s.Equal(models.TransactionTypeDeposit, event.Before.Type)
		s.Equal(models.TransactionTypeExpense, event.After.Type)
		s.True(event.BalanceDelta().Equal(decimal.NewFromInt(-200)))
		return decimal.NewFromInt(-100), nil
	})
	s.audit.EXPECT().LogResourceChange(s.ctx, s.userID, models.AuditActionUpdate, models.AuditResourceTransaction, current.ID, gomock.Any())

	updated, err := s.service.Update(s.ctx, s.userID, current.ID, dto.TransactionInput{Type: strPtr(models.TransactionTypeExpense)})
	s.Require().NoError(err)
	s.Equal("salary", updated.Description)
	s.True(updated.Amount.Equal(decimal.NewFromInt(100)))
	s.Equal(current.CreatedAt, updated.CreatedAt)
	s.Equal(models.TransactionTypeDeposit, current.Type)
}

func (s *TransactionServiceTestSuite) TestUpdate_MoveToForeignCategory() {
	current := s.stored()
	otherID := uuid.New()

	s.txRepo.EXPECT().GetByIDForUser(current.ID, s.userID).Return(current, nil)
	s.categoryRepo.EXPECT().GetByIDForUser(otherID, s.userID).Return(nil, repositories.ErrCategoryNotFound)

	_, err := s.service.Update(s.ctx, s.userID, current.ID, dto.TransactionInput{CategoryID: &otherID})
	s.Equal(ErrCategoryNotFound, err)
}

func (s *TransactionServiceTestSuite) TestUpdate_NotFound() {
	id := uuid.New()
	s.txRepo.EXPECT().GetByIDForUser(id, s.userID).Return(nil, repositories.ErrTransactionNotFound)

	_, err := s.service.Update(s.ctx, s.userID, id, dto.TransactionInput{})
	s.Equal(ErrTransactionNotFound, err)
}

func (s *TransactionServiceTestSuite) TestUpdate_DeletedConcurrently() {
	current := s.stored()
	s.txRepo.EXPECT().GetByIDForUser(current.ID, s.userID).Return(current, nil)
	s.ledger.EXPECT().Apply(s.ctx, gomock.Any()).Return(decimal.Zero, repositories.ErrTransactionNotFound)

	_, err := s.service.Update(s.ctx, s.userID, current.ID, dto.TransactionInput{Description: strPtr("x")})
	s.Equal(ErrTransactionNotFound, err)
}

func (s *TransactionServiceTestSuite) TestDelete() {
	current := s.stored()
	s.txRepo.EXPECT().GetByIDForUser(current.ID, s.userID).Return(current, nil)
	s.ledger.EXPECT().Apply(s.ctx, models.NewDeletedEvent(current)).Return(decimal.NewFromInt(-100), nil)
	s.audit.EXPECT().LogResourceChange(s.ctx, s.userID, models.AuditActionDelete, models.AuditResourceTransaction, current.ID, gomock.Any())

	s.NoError(s.service.Delete(s.ctx, s.userID, current.ID))
}

func (s *TransactionServiceTestSuite) TestList() {
	values := url.Values{"amount[gt]": {"5"}}
	query := models.TransactionQuery{UserID: s.userID}
	expected := []models.Transaction{*s.stored()}

	s.filters.EXPECT().BuildTransactionQuery(s.userID, values, models.FilterOptions{}).Return(query, nil)
	s.txRepo.EXPECT().FindByQuery(query).Return(expected, nil)

	result, err := s.service.List(s.ctx, s.userID, values)
	s.NoError(err)
	s.Equal(expected, result)
}

func (s *TransactionServiceTestSuite) TestList_RejectedFilterIsLogged() {
	values := url.Values{"password[eq]": {"x"}}
	rejection := fmt.Errorf("%w: password", ErrUnknownFilterField)

	s.filters.EXPECT().BuildTransactionQuery(s.userID, values, gomock.Any()).Return(models.TransactionQuery{}, rejection)
	s.metrics.EXPECT().IncrementCounter(MetricFilterRejected, gomock.Nil())
	s.auditLogger.EXPECT().LogFilterRejected(s.ctx, s.userID, values.Encode(), rejection)

	_, err := s.service.List(s.ctx, s.userID, values)
	s.ErrorIs(err, ErrUnknownFilterField)
}
