package repositories

import (
	"errors"
	"fmt"

	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnsupportedColumn   = errors.New("column is not filterable")
)

// transactionRepository implements TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// GetByIDForUser retrieves a transaction owned by userID with its category
func (r *transactionRepository) GetByIDForUser(id, userID uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// FindByQuery runs a parsed filter request. The owner scope is applied from
// query.UserID regardless of the clauses.
func (r *transactionRepository) FindByQuery(query models.TransactionQuery) ([]models.Transaction, error) {
	if query.UserID == uuid.Nil {
		return nil, errors.New("query user ID is required")
	}

	db := r.db.Model(&models.Transaction{}).
		Preload("Category").
		Where("user_id = ?", query.UserID)

	for _, c := range query.Clauses {
		expr, err := comparison(c)
		if err != nil {
			return nil, err
		}
		db = db.Where(expr)
	}

	columns := make([]clause.OrderByColumn, 0, len(query.OrderBy)+1)
	for _, s := range query.OrderBy {
		if !isAllowedColumn(s.Column) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedColumn, s.Column)
		}
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
	}
	// stable paging order when sort keys tie
	columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	db = db.Order(clause.OrderBy{Columns: columns})

	var transactions []models.Transaction
	if err := db.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	return transactions, nil
}

func comparison(c models.FilterClause) (clause.Expression, error) {
	if !isAllowedColumn(c.Column) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedColumn, c.Column)
	}

	column := clause.Column{Name: c.Column}
	switch c.Operator {
	case models.FilterOpEq:
		return clause.Eq{Column: column, Value: c.Value}, nil
	case models.FilterOpGt:
		return clause.Gt{Column: column, Value: c.Value}, nil
	case models.FilterOpLt:
		return clause.Lt{Column: column, Value: c.Value}, nil
	case models.FilterOpGte:
		return clause.Gte{Column: column, Value: c.Value}, nil
	case models.FilterOpLte:
		return clause.Lte{Column: column, Value: c.Value}, nil
	}

	return nil, fmt.Errorf("unsupported operator %q", c.Operator)
}

func isAllowedColumn(column string) bool {
	for _, field := range models.TransactionFilterFields {
		if field.Column == column {
			return true
		}
	}
	return false
}
