package database

import (
	"context"
	"fmt"
	"time"

	"expense-tracker-backend/models"
	"expense-tracker-backend/services"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var seedCategories = []models.Category{
	{Code: "FOOD", Label: "Food"},
	{Code: "ACCOMMODATION", Label: "Accommodation"},
	{Code: "TRAVEL", Label: "Travel"},
	{Code: "ENTERTAINMENT", Label: "Entertainment"},
	{Code: "SHOPPING", Label: "Shopping"},
	{Code: "UTILITIES", Label: "Utilities"},
	{Code: "OTHER", Label: "Other"},
}

var seedUsers = []models.User{
	{Name: "Alice", Email: "alice@example.com"},
	{Name: "Bob", Email: "bob@example.com"},
}

// Seed inserts the reference categories and demo users if missing, and a
// sample expense when the expense table is empty. It is safe to run on every
// start.
func Seed(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	tx := db.WithContext(ctx)

	categories := make(map[string]models.Category, len(seedCategories))
	for _, c := range seedCategories {
		cat := c
		if err := tx.Where(models.Category{Code: c.Code}).FirstOrCreate(&cat).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", c.Code, err)
		}
		categories[cat.Code] = cat
	}

	users := make([]models.User, 0, len(seedUsers))
	for _, u := range seedUsers {
		user := u
		if err := tx.Where(models.User{Email: u.Email}).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		users = append(users, user)
	}

	repo := NewExpenseRepository(db)
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info("Seed skipped sample expense", zap.Int64("existing", count))
		return nil
	}

	amount := decimal.NewFromInt(100)
	shares, err := services.ComputeSplit(amount, models.SplitTypeEqual, len(users), nil, nil)
	if err != nil {
		return err
	}

	notes := "Pizza and drinks"
	ids := make(models.JSONList[uint], len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	sample := &models.Expense{
		Title:           "Team Lunch",
		Amount:          amount,
		Currency:        models.CurrencyGBP,
		PaidByID:        users[0].ID,
		CategoryID:      categories["FOOD"].ID,
		SplitWith:       users,
		SplitWithIDs:    ids,
		SplitType:       models.SplitTypeEqual,
		SplitAmount:     shares,
		SplitPercentage: models.JSONList[decimal.Decimal]{},
		Notes:           &notes,
		ExpenseDate:     time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(ctx, sample); err != nil {
		return fmt.Errorf("seed sample expense: %w", err)
	}

	log.Info("Database seeded successfully",
		zap.Int("categories", len(categories)),
		zap.Int("users", len(users)),
	)
	return nil
}
