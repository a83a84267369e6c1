package models

import "github.com/shopspring/decimal"

type TypeCounts struct {
	Expense int `json:"expense"`
	Deposit int `json:"deposit"`
}

type TypeTotals struct {
	Expense decimal.Decimal `json:"expense"`
	Deposit decimal.Decimal `json:"deposit"`
}

// TransactionSummary holds per-type cardinality and sums over a set of transactions.
type TransactionSummary struct {
	Count TypeCounts `json:"tx_count"`
	Total TypeTotals `json:"tx_total"`
}
