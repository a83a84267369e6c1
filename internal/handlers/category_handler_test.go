package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/epson121/budget/internal/dto"
	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/services"
	"github.com/epson121/budget/internal/services/service_mocks"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type CategoryHandlerTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *service_mocks.MockCategoryServiceInterface
	handler *CategoryHandler
	echo    *echo.Echo
	userID  uuid.UUID
}

func TestCategoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(CategoryHandlerTestSuite))
}

func (s *CategoryHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = service_mocks.NewMockCategoryServiceInterface(s.ctrl)
	s.handler = NewCategoryHandler(s.service)
	s.echo = newTestEcho()
	s.userID = uuid.New()
}

func (s *CategoryHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CategoryHandlerTestSuite) withID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func (s *CategoryHandlerTestSuite) TestList() {
	categories := []models.Category{
		{ID: uuid.New(), UserID: s.userID, Name: "Food"},
		{ID: uuid.New(), UserID: s.userID, Name: "Salary"},
	}
	c, rec := newJSONContext(s.echo, http.MethodGet, "/api/categories", nil, s.userID)
	s.service.EXPECT().List(s.userID).Return(categories, nil)

	s.NoError(s.handler.List(c))
	s.Equal(http.StatusOK, rec.Code)

	var body []dto.CategoryResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().Len(body, 2)
	s.Equal("Food", body[0].Name)
	s.Empty(body[0].Message)
}

func (s *CategoryHandlerTestSuite) TestGet_NotOwned() {
	id := uuid.New()
	c, rec := newJSONContext(s.echo, http.MethodGet, "/api/categories/"+id.String(), nil, s.userID)
	s.withID(c, id.String())
	s.service.EXPECT().Get(s.userID, id).Return(nil, services.ErrCategoryNotFound)

	s.NoError(s.handler.Get(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("CATEGORY_001", decodeErrorResponse(rec).Error.Code)
}

func (s *CategoryHandlerTestSuite) TestGet_InvalidID() {
	c, rec := newJSONContext(s.echo, http.MethodGet, "/api/categories/1", nil, s.userID)
	s.withID(c, "1")

	s.NoError(s.handler.Get(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("CATEGORY_004", decodeErrorResponse(rec).Error.Code)
}

func (s *CategoryHandlerTestSuite) TestCreate() {
	name := gofakeit.Letter() + gofakeit.LetterN(8)
	created := &models.Category{ID: uuid.New(), UserID: s.userID, Name: name}
	c, rec := newJSONContext(s.echo, http.MethodPost, "/api/categories", map[string]string{"name": name}, s.userID)
	s.service.EXPECT().Create(gomock.Any(), s.userID, name).Return(created, nil)

	s.NoError(s.handler.Create(c))
	s.Equal(http.StatusCreated, rec.Code)

	var body dto.CategoryResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("Successfully created category.", body.Message)
	s.Equal(created.ID, body.ID)
	s.Equal(name, body.Name)
}

func (s *CategoryHandlerTestSuite) TestCreate_InvalidName() {
	for _, name := range []string{"", "Food & Drinks", "<script>"} {
		c, _ := newJSONContext(s.echo, http.MethodPost, "/api/categories", map[string]string{"name": name}, s.userID)
		s.Error(s.handler.Create(c), name)
	}
}

func (s *CategoryHandlerTestSuite) TestCreate_Duplicate() {
	c, rec := newJSONContext(s.echo, http.MethodPost, "/api/categories", map[string]string{"name": "Food"}, s.userID)
	s.service.EXPECT().Create(gomock.Any(), s.userID, "Food").Return(nil, services.ErrCategoryExists)

	s.NoError(s.handler.Create(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("CATEGORY_002", decodeErrorResponse(rec).Error.Code)
}

func (s *CategoryHandlerTestSuite) TestUpdate() {
	id := uuid.New()
	c, rec := newJSONContext(s.echo, http.MethodPut, "/api/categories/"+id.String(), map[string]string{"name": "Groceries"}, s.userID)
	s.withID(c, id.String())
	s.service.EXPECT().Update(gomock.Any(), s.userID, id, "Groceries").
		Return(&models.Category{ID: id, UserID: s.userID, Name: "Groceries"}, nil)

	s.NoError(s.handler.Update(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Successfully updated category")
}

func (s *CategoryHandlerTestSuite) TestDelete() {
	id := uuid.New()
	c, rec := newJSONContext(s.echo, http.MethodDelete, "/api/categories/"+id.String(), nil, s.userID)
	s.withID(c, id.String())
	s.service.EXPECT().Delete(gomock.Any(), s.userID, id).Return(nil)

	s.NoError(s.handler.Delete(c))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"message":"Category deleted."}`, rec.Body.String())
}

func (s *CategoryHandlerTestSuite) TestDelete_InUse() {
	id := uuid.New()
	c, rec := newJSONContext(s.echo, http.MethodDelete, "/api/categories/"+id.String(), nil, s.userID)
	s.withID(c, id.String())
	s.service.EXPECT().Delete(gomock.Any(), s.userID, id).
		Return(fmt.Errorf("delete category: %w", services.ErrCategoryInUse))

	s.NoError(s.handler.Delete(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("CATEGORY_003", decodeErrorResponse(rec).Error.Code)
}
