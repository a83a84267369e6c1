package services

import (
	"net/url"
	"testing"
	"time"

	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type FilterEngineTestSuite struct {
	suite.Suite
	engine FilterEngineInterface
	userID uuid.UUID
}

func (s *FilterEngineTestSuite) SetupTest() {
	s.engine = NewFilterEngine()
	s.userID = uuid.New()
}

func TestFilterEngineSuite(t *testing.T) {
	suite.Run(t, new(FilterEngineTestSuite))
}

func (s *FilterEngineTestSuite) build(raw string) (models.TransactionQuery, error) {
	values, err := url.ParseQuery(raw)
	s.Require().NoError(err)
	return s.engine.BuildTransactionQuery(s.userID, values, models.FilterOptions{})
}

func (s *FilterEngineTestSuite) TestEmptyQueryUsesDefaultOrder() {
	query, err := s.build("")
	s.Require().NoError(err)
	s.Equal(s.userID, query.UserID)
	s.Empty(query.Clauses)
	s.Equal([]models.SortClause{{Column: "created_at"}}, query.OrderBy)
}

func (s *FilterEngineTestSuite) TestRangeOnAmount() {
	query, err := s.build("amount[gt]=10&amount[lte]=99.50")
	s.Require().NoError(err)
	s.Require().Len(query.Clauses, 2)

	byOp := map[models.FilterOperator]models.FilterClause{}
	for _, c := range query.Clauses {
		byOp[c.Operator] = c
	}
	s.True(byOp[models.FilterOpGt].Value.(decimal.Decimal).Equal(decimal.NewFromInt(10)))
	s.True(byOp[models.FilterOpLte].Value.(decimal.Decimal).Equal(decimal.RequireFromString("99.50")))
	s.Equal("amount", byOp[models.FilterOpGt].Column)
}

func (s *FilterEngineTestSuite) TestDateFormats() {
	query, err := s.build("created_at[gte]=2024-01-01&created_at[lt]=2024-02-01+10:30:00")
	s.Require().NoError(err)
	s.Require().Len(query.Clauses, 2)

	for _, c := range query.Clauses {
		value := c.Value.(time.Time)
		switch c.Operator {
		case models.FilterOpGte:
			s.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), value)
		case models.FilterOpLt:
			s.Equal(time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC), value)
		}
	}
}

func (s *FilterEngineTestSuite) TestCategoryAndType() {
	categoryID := uuid.New()
	query, err := s.build("category_id[eq]=" + categoryID.String() + "&type[eq]=expense")
	s.Require().NoError(err)
	s.Require().Len(query.Clauses, 2)
	s.Equal(categoryID, query.Clauses[0].Value)
	s.Equal("expense", query.Clauses[1].Value)
}

func (s *FilterEngineTestSuite) TestCallerUserIDIsDiscarded() {
	query, err := s.build("user_id[eq]=" + uuid.NewString())
	s.Require().NoError(err)
	s.Equal(s.userID, query.UserID)
	s.Empty(query.Clauses)
}

func (s *FilterEngineTestSuite) TestOrdering() {
	query, err := s.build("orderBy[amount]=desc&orderBy[created_at]=ASC")
	s.Require().NoError(err)
	s.Equal([]models.SortClause{
		{Column: "amount", Desc: true},
		{Column: "created_at"},
	}, query.OrderBy)
}

func (s *FilterEngineTestSuite) TestRejections() {
	cases := map[string]error{
		"description[eq]=rent":                     ErrUnknownFilterField,
		"password[eq]=x":                           ErrUnknownFilterField,
		"amount[like]=5":                           ErrUnsupportedFilterOperator,
		"type[gt]=expense":                         ErrUnsupportedFilterOperator,
		"user_id[gt]=" + uuid.Nil.String():         ErrUnsupportedFilterOperator,
		"user_id[eq]=not-a-uuid":                   ErrInvalidFilterValue,
		"amount[gt]=ten":                           ErrInvalidFilterValue,
		"created_at[gt]=01/02/2024":                ErrInvalidFilterValue,
		"category_id[eq]=42":                       ErrInvalidFilterValue,
		"type[eq]=refund":                          ErrInvalidFilterValue,
		"amount=5":                                 ErrMalformedFilter,
		"[gt]=5":                                   ErrMalformedFilter,
		"amount[]=5":                               ErrMalformedFilter,
		"amount[gt][x]=5":                          ErrMalformedFilter,
		"orderBy[amount]=sideways":                 ErrInvalidOrderDirection,
		"orderBy[description]=asc":                 ErrUnknownFilterField,
		"orderBy[amount]=asc&orderBy[amount]=desc": ErrMalformedFilter,
	}

	for raw, want := range cases {
		_, err := s.build(raw)
		s.ErrorIs(err, want, raw)
		s.True(IsFilterError(err), raw)
	}
}

func (s *FilterEngineTestSuite) TestOnlyFieldsAndDisableOrdering() {
	opts := models.FilterOptions{OnlyFields: []string{"created_at"}, DisableOrdering: true}

	values, _ := url.ParseQuery("created_at[gte]=2024-01-01&orderBy[amount]=desc")
	query, err := s.engine.BuildTransactionQuery(s.userID, values, opts)
	s.Require().NoError(err)
	s.Len(query.Clauses, 1)
	s.Empty(query.OrderBy)

	values, _ = url.ParseQuery("amount[gt]=5")
	_, err = s.engine.BuildTransactionQuery(s.userID, values, opts)
	s.ErrorIs(err, ErrUnknownFilterField)

	rejected := map[string]error{
		"orderBy[bogus]=asc":       ErrUnknownFilterField,
		"orderBy[amount]=sideways": ErrInvalidOrderDirection,
		"user_id[eq]=not-a-uuid":   ErrInvalidFilterValue,
	}
	for raw, want := range rejected {
		values, _ = url.ParseQuery(raw)
		_, err = s.engine.BuildTransactionQuery(s.userID, values, opts)
		s.ErrorIs(err, want, raw)
	}
}

func (s *FilterEngineTestSuite) TestNilUserIsRejected() {
	_, err := s.engine.BuildTransactionQuery(uuid.Nil, url.Values{}, models.FilterOptions{})
	s.ErrorIs(err, ErrInvalidUserID)
}
