package models

import (
	"github.com/shopspring/decimal"
)

type LedgerEventKind string

const (
	LedgerEventCreated LedgerEventKind = "created"
	LedgerEventUpdated LedgerEventKind = "updated"
	LedgerEventDeleted LedgerEventKind = "deleted"
)

// LedgerEvent describes one transaction write and its balance consequence.
// Before is nil for creations and After is nil for deletions.
type LedgerEvent struct {
	Kind   LedgerEventKind
	Before *Transaction
	After  *Transaction
}

func NewCreatedEvent(tx *Transaction) LedgerEvent {
	return LedgerEvent{Kind: LedgerEventCreated, After: tx}
}

func NewUpdatedEvent(before, after *Transaction) LedgerEvent {
	return LedgerEvent{Kind: LedgerEventUpdated, Before: before, After: after}
}

func NewDeletedEvent(tx *Transaction) LedgerEvent {
	return LedgerEvent{Kind: LedgerEventDeleted, Before: tx}
}

// Effect is the signed contribution of a transaction to its owner's balance.
// Unknown types contribute nothing; the model hooks reject them before persistence.
func Effect(tx *Transaction) decimal.Decimal {
	if tx == nil {
		return decimal.Zero
	}

	switch tx.Type {
	case TransactionTypeDeposit:
		return tx.Amount
	case TransactionTypeExpense:
		return tx.Amount.Neg()
	default:
		return decimal.Zero
	}
}

// BalanceDelta is effect(After) - effect(Before). The same expression covers
// creation, deletion, and every kind of update including a type change.
func (e LedgerEvent) BalanceDelta() decimal.Decimal {
	return Effect(e.After).Sub(Effect(e.Before))
}

// Subject returns the transaction the event is about.
func (e LedgerEvent) Subject() *Transaction {
	if e.After != nil {
		return e.After
	}
	return e.Before
}
