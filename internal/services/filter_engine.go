package services

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const orderByKey = "orderBy"

var (
	ErrUnknownFilterField        = errors.New("unknown filter field")
	ErrUnsupportedFilterOperator = errors.New("unsupported filter operator")
	ErrInvalidFilterValue        = errors.New("invalid filter value")
	ErrMalformedFilter           = errors.New("malformed filter")
	ErrInvalidOrderDirection     = errors.New("invalid order direction")
)

// IsFilterError reports whether err came from rejecting caller input
func IsFilterError(err error) bool {
	return errors.Is(err, ErrUnknownFilterField) ||
		errors.Is(err, ErrUnsupportedFilterOperator) ||
		errors.Is(err, ErrInvalidFilterValue) ||
		errors.Is(err, ErrMalformedFilter) ||
		errors.Is(err, ErrInvalidOrderDirection)
}

// FilterEngine parses field[op]=value and orderBy[field]=dir query parameters
// against models.TransactionFilterFields.
type FilterEngine struct {
	fields map[string]models.FilterField
}

func NewFilterEngine() FilterEngineInterface {
	return &FilterEngine{fields: models.TransactionFilterFields}
}

// BuildTransactionQuery validates every query key. Clauses are ANDed and the
// query is always scoped to userID. Caller-supplied user_id clauses are
// validated and then dropped. Sort keys are validated even when ordering is disabled.
func (e *FilterEngine) BuildTransactionQuery(userID uuid.UUID, values url.Values, opts models.FilterOptions) (models.TransactionQuery, error) {
	query := models.TransactionQuery{UserID: userID}
	if userID == uuid.Nil {
		return query, ErrInvalidUserID
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name, arg, err := splitFilterKey(key)
		if err != nil {
			return query, err
		}

		if name == orderByKey {
			sortClause, err := e.parseOrder(arg, values[key])
			if err != nil {
				return query, err
			}
			if !opts.DisableOrdering {
				query.OrderBy = append(query.OrderBy, sortClause)
			}
			continue
		}

		field, ok := e.fields[name]
		if !ok || !opts.Permits(name) && !field.ServerScoped {
			return query, fmt.Errorf("%w: %s", ErrUnknownFilterField, name)
		}

		op := models.FilterOperator(arg)
		if !field.Allows(op) {
			return query, fmt.Errorf("%w: %s[%s]", ErrUnsupportedFilterOperator, name, arg)
		}

		for _, raw := range values[key] {
			value, err := parseFilterValue(field.Kind, raw)
			if err != nil {
				return query, fmt.Errorf("%w: %s[%s]=%q", ErrInvalidFilterValue, name, arg, raw)
			}
			if field.ServerScoped {
				continue
			}
			query.Clauses = append(query.Clauses, models.FilterClause{
				Field:    name,
				Column:   field.Column,
				Operator: op,
				Value:    value,
			})
		}
	}

	if len(query.OrderBy) == 0 && !opts.DisableOrdering {
		query.OrderBy = []models.SortClause{{Column: "created_at"}}
	}

	return query, nil
}

func (e *FilterEngine) parseOrder(name string, directions []string) (models.SortClause, error) {
	field, ok := e.fields[name]
	if !ok || !field.Sortable {
		return models.SortClause{}, fmt.Errorf("%w: %s", ErrUnknownFilterField, name)
	}

	if len(directions) != 1 {
		return models.SortClause{}, fmt.Errorf("%w: orderBy[%s] given %d times", ErrMalformedFilter, name, len(directions))
	}

	switch models.SortDirection(strings.ToLower(directions[0])) {
	case models.SortAsc:
		return models.SortClause{Column: field.Column}, nil
	case models.SortDesc:
		return models.SortClause{Column: field.Column, Desc: true}, nil
	default:
		return models.SortClause{}, fmt.Errorf("%w: %q", ErrInvalidOrderDirection, directions[0])
	}
}

// splitFilterKey splits "amount[gt]" into "amount" and "gt".
func splitFilterKey(key string) (string, string, error) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedFilter, key)
	}

	name, arg := key[:open], key[open+1:len(key)-1]
	if arg == "" || strings.ContainsAny(arg, "[]") {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedFilter, key)
	}

	return name, arg, nil
}

func parseFilterValue(kind models.FilterValueKind, raw string) (interface{}, error) {
	switch kind {
	case models.FilterValueUUID:
		return uuid.Parse(raw)
	case models.FilterValueDecimal:
		return decimal.NewFromString(raw)
	case models.FilterValueDateTime:
		return models.ParseDateTime(raw)
	case models.FilterValueTransactionType:
		if !models.IsValidTransactionType(raw) {
			return nil, models.ErrInvalidTransactionType
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %d", kind)
	}
}
