package models

import (
	"github.com/google/uuid"
)

type FilterOperator string

const (
	FilterOpEq  FilterOperator = "eq"
	FilterOpGt  FilterOperator = "gt"
	FilterOpLt  FilterOperator = "lt"
	FilterOpGte FilterOperator = "gte"
	FilterOpLte FilterOperator = "lte"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type FilterValueKind int

const (
	FilterValueUUID FilterValueKind = iota
	FilterValueDecimal
	FilterValueDateTime
	FilterValueTransactionType
)

// FilterField is one allow-listed transaction attribute.
type FilterField struct {
	Column    string
	Kind      FilterValueKind
	Operators []FilterOperator
	Sortable  bool
	// ServerScoped fields are never taken from the caller.
	ServerScoped bool
}

func (f FilterField) Allows(op FilterOperator) bool {
	for _, allowed := range f.Operators {
		if allowed == op {
			return true
		}
	}
	return false
}

const FilterFieldUserID = "user_id"

// TransactionFilterFields is the complete allow-list for transaction queries.
// Anything not listed here is rejected.
var TransactionFilterFields = map[string]FilterField{
	FilterFieldUserID: {
		Column:       "user_id",
		Kind:         FilterValueUUID,
		Operators:    []FilterOperator{FilterOpEq},
		ServerScoped: true,
	},
	"category_id": {
		Column:    "category_id",
		Kind:      FilterValueUUID,
		Operators: []FilterOperator{FilterOpEq},
		Sortable:  true,
	},
	"amount": {
		Column:    "amount",
		Kind:      FilterValueDecimal,
		Operators: []FilterOperator{FilterOpEq, FilterOpGt, FilterOpLt, FilterOpGte, FilterOpLte},
		Sortable:  true,
	},
	"created_at": {
		Column:    "created_at",
		Kind:      FilterValueDateTime,
		Operators: []FilterOperator{FilterOpEq, FilterOpGt, FilterOpLt, FilterOpGte, FilterOpLte},
		Sortable:  true,
	},
	"type": {
		Column:    "type",
		Kind:      FilterValueTransactionType,
		Operators: []FilterOperator{FilterOpEq},
		Sortable:  true,
	},
}

// FilterClause is a validated column comparison. Value is already typed for the column.
type FilterClause struct {
	Field    string
	Column   string
	Operator FilterOperator
	Value    interface{}
}

type SortClause struct {
	Column string
	Desc   bool
}

// TransactionQuery is the result of parsing a filter request. UserID is always
// applied on top of Clauses.
type TransactionQuery struct {
	UserID  uuid.UUID
	Clauses []FilterClause
	OrderBy []SortClause
}

// FilterOptions narrows what a caller may filter on
type FilterOptions struct {
	// OnlyFields limits accepted filter fields. Empty means the whole allow-list.
	OnlyFields []string
	// DisableOrdering validates orderBy keys and then drops them.
	DisableOrdering bool
}

func (o FilterOptions) Permits(field string) bool {
	if len(o.OnlyFields) == 0 {
		return true
	}
	for _, f := range o.OnlyFields {
		if f == field {
			return true
		}
	}
	return false
}
