package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"
	"github.com/epson121/budget/internal/repositories/repository_mocks"
	"github.com/epson121/budget/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	repo    *repository_mocks.MockCategoryRepositoryInterface
	audit   *service_mocks.MockAuditServiceInterface
	metrics *service_mocks.MockMetricsRecorderInterface
	service CategoryServiceInterface
	ctx     context.Context
	userID  uuid.UUID
}

func (s *CategoryServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = repository_mocks.NewMockCategoryRepositoryInterface(s.ctrl)
	s.audit = service_mocks.NewMockAuditServiceInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.metrics.EXPECT().IncrementCounter(MetricCategoryWrite, gomock.Any()).AnyTimes()
	s.service = NewCategoryService(s.repo, s.audit, s.metrics, slog.Default())
	s.ctx = context.Background()
	s.userID = uuid.New()
}

func (s *CategoryServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestCategoryServiceSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func (s *CategoryServiceTestSuite) owned(name string) *models.Category {
	return &models.Category{ID: uuid.New(), UserID: s.userID, Name: name}
}

func (s *CategoryServiceTestSuite) TestList() {
	categories := []models.Category{*s.owned("Car"), *s.owned("Food")}
	s.repo.EXPECT().ListByUser(s.userID).Return(categories, nil)

	result, err := s.service.List(s.userID)
	s.NoError(err)
	s.Len(result, 2)
}

func (s *CategoryServiceTestSuite) TestGet_NotFoundForOtherUser() {
	id := uuid.New()
	s.repo.EXPECT().GetByIDForUser(id, s.userID).Return(nil, repositories.ErrCategoryNotFound)

	_, err := s.service.Get(s.userID, id)
	s.Equal(ErrCategoryNotFound, err)
}

func (s *CategoryServiceTestSuite) TestCreate_Success() {
	s.repo.EXPECT().ExistsByName(s.userID, "Groceries", uuid.Nil).Return(false, nil)
	s.repo.EXPECT().Create(gomock.Any()).DoAndReturn(func(c *models.Category) error {
		c.ID = uuid.New()
		return nil
	})
	s.audit.EXPECT().LogResourceChange(s.ctx, s.userID, models.AuditActionCreate, models.AuditResourceCategory, gomock.Any(), gomock.Any())

	category, err := s.service.Create(s.ctx, s.userID, "  Groceries ")
	s.Require().NoError(err)
	s.Equal("Groceries", category.Name)
	s.Equal(s.userID, category.UserID)
}

func (s *CategoryServiceTestSuite) TestCreate_Duplicate() {
	s.repo.EXPECT().ExistsByName(s.userID, "Food", uuid.Nil).Return(true, nil)

	_, err := s.service.Create(s.ctx, s.userID, "Food")
	s.Equal(ErrCategoryExists, err)
}

func (s *CategoryServiceTestSuite) TestCreate_DuplicateRace() {
	s.repo.EXPECT().ExistsByName(s.userID, "Food", uuid.Nil).Return(false, nil)
	s.repo.EXPECT().Create(gomock.Any()).Return(repositories.ErrCategoryExists)

	_, err := s.service.Create(s.ctx, s.userID, "Food")
	s.Equal(ErrCategoryExists, err)
}

func (s *CategoryServiceTestSuite) TestCreate_InvalidName() {
	for _, name := range []string{"", "Food!", "this name is far too long to be accepted as a category name"} {
		_, err := s.service.Create(s.ctx, s.userID, name)
		s.ErrorIs(err, ErrInvalidCategory, name)
	}
}

func (s *CategoryServiceTestSuite) TestUpdate_Rename() {
	category := s.owned("Food")

	s.repo.EXPECT().GetByIDForUser(category.ID, s.userID).Return(category, nil)
	s.repo.EXPECT().ExistsByName(s.userID, "Dining", category.ID).Return(false, nil)
	s.repo.EXPECT().Update(category).Return(nil)
	s.audit.EXPECT().LogResourceChange(s.ctx, s.userID, models.AuditActionUpdate, models.AuditResourceCategory, category.ID,
		map[string]interface{}{"old_name": "Food", "new_name": "Dining"})

	updated, err := s.service.Update(s.ctx, s.userID, category.ID, "Dining")
	s.NoError(err)
	s.Equal("Dining", updated.Name)
}

func (s *CategoryServiceTestSuite) TestUpdate_SameNameIsNoop() {
	category := s.owned("Food")
	s.repo.EXPECT().GetByIDForUser(category.ID, s.userID).Return(category, nil)

	updated, err := s.service.Update(s.ctx, s.userID, category.ID, "Food")
	s.NoError(err)
	s.Equal(category, updated)
}

func (s *CategoryServiceTestSuite) TestUpdate_Conflict() {
	category := s.owned("Food")
	s.repo.EXPECT().GetByIDForUser(category.ID, s.userID).Return(category, nil)
	s.repo.EXPECT().ExistsByName(s.userID, "Car", category.ID).Return(true, nil)

	_, err := s.service.Update(s.ctx, s.userID, category.ID, "Car")
	s.Equal(ErrCategoryExists, err)
}

func (s *CategoryServiceTestSuite) TestDelete_Success() {
	category := s.owned("Gifts")
	s.repo.EXPECT().GetByIDForUser(category.ID, s.userID).Return(category, nil)
	s.repo.EXPECT().Delete(category).Return(nil)
	s.audit.EXPECT().LogResourceChange(s.ctx, s.userID, models.AuditActionDelete, models.AuditResourceCategory, category.ID, gomock.Any())

	s.NoError(s.service.Delete(s.ctx, s.userID, category.ID))
}

func (s *CategoryServiceTestSuite) TestDelete_InUse() {
	category := s.owned("Gifts")
	s.repo.EXPECT().GetByIDForUser(category.ID, s.userID).Return(category, nil)
	s.repo.EXPECT().Delete(category).Return(repositories.ErrCategoryInUse)

	s.Equal(ErrCategoryInUse, s.service.Delete(s.ctx, s.userID, category.ID))
}

func (s *CategoryServiceTestSuite) TestDelete_StorageError() {
	category := s.owned("Gifts")
	cause := errors.New("timeout")
	s.repo.EXPECT().GetByIDForUser(category.ID, s.userID).Return(category, nil)
	s.repo.EXPECT().Delete(category).Return(cause)

	err := s.service.Delete(s.ctx, s.userID, category.ID)
	s.ErrorIs(err, cause)
}
