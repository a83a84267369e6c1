package services

import (
	"errors"
	"fmt"

	"github.com/epson121/budget/internal/models"

	"github.com/shopspring/decimal"
)

// ErrUnknownTransactionType means a stored transaction has a type outside
// expense and deposit.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// Summarize counts and sums transactions per type. It is pure; an empty
// input yields zero counts and zero totals.
func Summarize(transactions []models.Transaction) (*models.TransactionSummary, error) {
	summary := &models.TransactionSummary{
		Total: models.TypeTotals{
			Expense: decimal.Zero,
			Deposit: decimal.Zero,
		},
	}

	for i := range transactions {
		tx := &transactions[i]
		switch tx.Type {
		case models.TransactionTypeExpense:
			summary.Count.Expense++
			summary.Total.Expense = summary.Total.Expense.Add(tx.Amount)
		case models.TransactionTypeDeposit:
			summary.Count.Deposit++
			summary.Total.Deposit = summary.Total.Deposit.Add(tx.Amount)
		default:
			return nil, fmt.Errorf("%w: %q on transaction %s", ErrUnknownTransactionType, tx.Type, tx.ID)
		}
	}

	return summary, nil
}
