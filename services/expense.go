package services

import (
	"context"
	"strconv"

	"expense-tracker-backend/apperr"
	"expense-tracker-backend/metrics"
	"expense-tracker-backend/models"
	"expense-tracker-backend/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExpenseStore persists expenses. Create fills the generated id and
// timestamps in place. DeleteByID returns apperr.ErrExpenseNotFound when no
// row matched.
type ExpenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	FindAll(ctx context.Context) ([]models.Expense, error)
	DeleteByID(ctx context.Context, id uint) error
}

// ExpenseNotifier is told about every expense after it is stored.
type ExpenseNotifier interface {
	NotifyExpenseAdded(ctx context.Context, expense models.Expense)
}

const moneyPlaces = 2

type ExpenseService struct {
	store    ExpenseStore
	notifier ExpenseNotifier
	metrics  *metrics.Metrics
	logger   *zap.Logger

	// runs post-commit work; replaced in tests to run inline
	async func(func())
}

// NewExpenseService wires the create/list/delete workflow. notifier and m
// may be nil.
func NewExpenseService(store ExpenseStore, notifier ExpenseNotifier, m *metrics.Metrics, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		store:    store,
		notifier: notifier,
		metrics:  m,
		logger:   logger.Named("expenses"),
		async:    func(f func()) { go f() },
	}
}

// CreateExpense applies defaults, computes the split and stores the expense.
// Split validation failures are returned before the store is touched.
func (s *ExpenseService) CreateExpense(ctx context.Context, req models.CreateExpenseRequest) (*models.Expense, error) {
	currency := models.Currency(req.Currency)
	if currency == "" {
		currency = models.DefaultCurrency
	}
	if !currency.Valid() {
		return nil, apperr.Validation(apperr.FieldError{
			Field:      "currency",
			MessageKey: "VALIDATION.oneof",
			Params:     map[string]string{"param": "GBP INR USD EUR AUD CAD JPY CNY OTHER"},
		})
	}

	splitType := models.SplitType(req.SplitType)
	if splitType == "" {
		splitType = models.SplitTypeEqual
	}
	if !splitType.Valid() {
		s.metrics.SplitRejected(apperr.CodeSplitType)
		return nil, apperr.ErrSplitType.WithParams(map[string]string{"splitType": req.SplitType})
	}

	expenseDate, err := utils.ParseISODate(req.ExpenseDate)
	if err != nil {
		return nil, apperr.Validation(apperr.FieldError{Field: "expenseDate", MessageKey: "VALIDATION.isodate"})
	}

	// Amounts are stored with two places; finer input is rejected, not rounded.
	amount := decimal.NewFromFloat(req.Amount)
	if !amount.Equal(amount.Round(moneyPlaces)) {
		return nil, apperr.Validation(apperr.FieldError{
			Field:      "amount",
			MessageKey: "VALIDATION.decimals",
			Params:     map[string]string{"param": strconv.Itoa(moneyPlaces)},
		})
	}
	callerAmounts := toDecimals(req.SplitAmount)
	callerPercentages := toDecimals(req.SplitPercentage)

	shares := []decimal.Decimal{}
	if len(req.SplitWithIDs) > 0 {
		shares, err = ComputeSplit(amount, splitType, len(req.SplitWithIDs), callerAmounts, callerPercentages)
		if err != nil {
			if appErr, ok := apperr.As(err); ok {
				s.metrics.SplitRejected(appErr.Code)
			}
			return nil, err
		}
	}

	percentages := []decimal.Decimal{}
	if splitType == models.SplitTypePercentage {
		percentages = callerPercentages
	}

	participants := make([]models.User, len(req.SplitWithIDs))
	for i, id := range req.SplitWithIDs {
		participants[i] = models.User{ID: id}
	}

	expense := &models.Expense{
		Title:           req.Title,
		Amount:          amount,
		Currency:        currency,
		PaidByID:        req.PaidByID,
		CategoryID:      req.CategoryID,
		SplitWith:       participants,
		SplitWithIDs:    append(models.JSONList[uint]{}, req.SplitWithIDs...),
		SplitType:       splitType,
		SplitAmount:     shares,
		SplitPercentage: percentages,
		Notes:           req.Notes,
		ExpenseDate:     expenseDate,
	}

	if err := s.store.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.metrics.ExpenseCreated(string(splitType))
	s.logger.Info("Expense created",
		zap.Uint("expense_id", expense.ID),
		zap.String("split_type", string(splitType)),
		zap.Int("participants", len(req.SplitWithIDs)),
	)

	if s.notifier != nil && len(req.SplitWithIDs) > 0 {
		notifyCtx := context.WithoutCancel(ctx)
		created := *expense
		s.async(func() { s.notifier.NotifyExpenseAdded(notifyCtx, created) })
	}

	return expense, nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	return s.store.FindAll(ctx)
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id uint) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Expense deleted", zap.Uint("expense_id", id))
	return nil
}

func toDecimals(values []float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}
