package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerEventTestSuite struct {
	suite.Suite
}

func TestLedgerEventTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerEventTestSuite))
}

func tx(txType string, amount string) *Transaction {
	return &Transaction{Type: txType, Amount: decimal.RequireFromString(amount)}
}

func (s *LedgerEventTestSuite) assertDecimal(expected string, actual decimal.Decimal) {
	s.True(decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func (s *LedgerEventTestSuite) TestEffect() {
	s.assertDecimal("20", Effect(tx(TransactionTypeDeposit, "20")))
	s.assertDecimal("-20", Effect(tx(TransactionTypeExpense, "20")))
	s.assertDecimal("0", Effect(tx("refund", "20")))
	s.assertDecimal("0", Effect(nil))
}

func (s *LedgerEventTestSuite) TestCreated() {
	s.assertDecimal("50", NewCreatedEvent(tx(TransactionTypeDeposit, "50")).BalanceDelta())
	s.assertDecimal("-50", NewCreatedEvent(tx(TransactionTypeExpense, "50")).BalanceDelta())
}

func (s *LedgerEventTestSuite) TestDeleted() {
	s.assertDecimal("-50", NewDeletedEvent(tx(TransactionTypeDeposit, "50")).BalanceDelta())
	s.assertDecimal("50", NewDeletedEvent(tx(TransactionTypeExpense, "50")).BalanceDelta())
}

func (s *LedgerEventTestSuite) TestUpdated() {
	testCases := []struct {
		name     string
		before   *Transaction
		after    *Transaction
		expected string
	}{
		{"expense amount raised", tx(TransactionTypeExpense, "20"), tx(TransactionTypeExpense, "30"), "-10"},
		{"deposit amount lowered", tx(TransactionTypeDeposit, "30"), tx(TransactionTypeDeposit, "10.5"), "-19.5"},
		{"expense to deposit", tx(TransactionTypeExpense, "20"), tx(TransactionTypeDeposit, "20"), "40"},
		{"deposit to expense with new amount", tx(TransactionTypeDeposit, "20"), tx(TransactionTypeExpense, "5"), "-25"},
		{"unchanged", tx(TransactionTypeExpense, "7.77"), tx(TransactionTypeExpense, "7.77"), "0"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.assertDecimal(tc.expected, NewUpdatedEvent(tc.before, tc.after).BalanceDelta())
		})
	}
}

func (s *LedgerEventTestSuite) TestUpdateThenRevertIsIdentity() {
	original := tx(TransactionTypeExpense, "20")
	changed := tx(TransactionTypeDeposit, "35.10")

	forward := NewUpdatedEvent(original, changed).BalanceDelta()
	back := NewUpdatedEvent(changed, original).BalanceDelta()

	s.True(forward.Add(back).IsZero())
}

func (s *LedgerEventTestSuite) TestCreateThenDeleteIsIdentity() {
	for _, t := range []*Transaction{tx(TransactionTypeExpense, "12.34"), tx(TransactionTypeDeposit, "99.99")} {
		s.True(NewCreatedEvent(t).BalanceDelta().Add(NewDeletedEvent(t).BalanceDelta()).IsZero())
	}
}

func (s *LedgerEventTestSuite) TestSubject() {
	before := tx(TransactionTypeExpense, "1")
	after := tx(TransactionTypeExpense, "2")

	s.Same(after, NewCreatedEvent(after).Subject())
	s.Same(after, NewUpdatedEvent(before, after).Subject())
	s.Same(before, NewDeletedEvent(before).Subject())
}
