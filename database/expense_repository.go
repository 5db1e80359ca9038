package database

import (
	"context"
	"errors"
	"strings"

	"expense-tracker-backend/apperr"
	"expense-tracker-backend/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// pq error code for foreign_key_violation.
const pqForeignKeyViolation = "23503"

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("PaidBy").
		Preload("Category").
		Preload("SplitWith")
}

// Create inserts the expense and its participant links, then reloads it with
// payer, category and participants attached. Participants are linked by id
// only; user rows are never written.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if err := r.db.WithContext(ctx).Omit("SplitWith.*").Create(expense).Error; err != nil {
		return mapWriteError(err)
	}
	return r.withRelations(ctx).First(expense, expense.ID).Error
}

func (r *ExpenseRepository) FindAll(ctx context.Context) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.withRelations(ctx).
		Order("expense_date DESC").
		Order("id DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) FindByID(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := r.withRelations(ctx).First(&expense, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrExpenseNotFound
		}
		return nil, err
	}
	return &expense, nil
}

// DeleteByID removes the expense and its participant links in one
// transaction.
func (r *ExpenseRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM expense_participants WHERE expense_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Expense{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.ErrExpenseNotFound
		}
		return nil
	})
}

func (r *ExpenseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Expense{}).Count(&n).Error
	return n, err
}

func mapWriteError(err error) error {
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation:
		return apperr.ErrReferenceNotFound.Wrap(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated),
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return apperr.ErrReferenceNotFound.Wrap(err)
	}
	return err
}
