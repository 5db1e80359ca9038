package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"not null;size:255" json:"title"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency    Currency        `gorm:"not null;size:8;default:GBP" json:"currency"`
	PaidByID    uint            `gorm:"not null;index" json:"paidById"`
	PaidBy      *User           `gorm:"foreignKey:PaidByID" json:"paidBy,omitempty"`
	CategoryID  uint            `gorm:"not null;index" json:"categoryId"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SplitWith   []User          `gorm:"many2many:expense_participants" json:"splitWith,omitempty"`
	SplitType   SplitType       `gorm:"not null;size:20" json:"splitType"`
	Notes       *string         `json:"notes,omitempty"`
	ExpenseDate time.Time       `gorm:"not null" json:"expenseDate"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// The join table has no ordering, so participant order is kept here.
	// SplitAmount[i] is owed by SplitWithIDs[i].
	SplitWithIDs    JSONList[uint]            `json:"splitWithIds"`
	SplitAmount     JSONList[decimal.Decimal] `json:"splitAmount"`
	SplitPercentage JSONList[decimal.Decimal] `json:"splitPercentage"`
}

// Request structs
type CreateExpenseRequest struct {
	Title           string    `json:"title" binding:"required"`
	Amount          float64   `json:"amount" binding:"required,gt=0"`
	Currency        string    `json:"currency" binding:"omitempty,oneof=GBP INR USD EUR AUD CAD JPY CNY OTHER"`
	PaidByID        uint      `json:"paidById" binding:"required,gt=0"`
	CategoryID      uint      `json:"categoryId" binding:"required,gt=0"`
	SplitWithIDs    []uint    `json:"splitWithIds" binding:"omitempty,unique,dive,gt=0"`
	SplitType       string    `json:"splitType" binding:"omitempty,oneof=EQUAL AMOUNT PERCENTAGE"`
	SplitAmount     []float64 `json:"splitAmount" binding:"omitempty,dive,gt=0"`
	SplitPercentage []float64 `json:"splitPercentage" binding:"omitempty,dive,gt=0"`
	Notes           *string   `json:"notes"`
	ExpenseDate     string    `json:"expenseDate" binding:"required,isodate"`
}

// Response
type ExpenseResponse struct {
	ID              uint           `json:"id"`
	Title           string         `json:"title"`
	Amount          float64        `json:"amount"`
	Currency        Currency       `json:"currency"`
	PaidByID        uint           `json:"paidById"`
	PaidBy          *UserResponse  `json:"paidBy,omitempty"`
	CategoryID      uint           `json:"categoryId"`
	Category        *Category      `json:"category,omitempty"`
	SplitWithIDs    []uint         `json:"splitWithIds"`
	SplitWith       []UserResponse `json:"splitWith,omitempty"`
	SplitType       SplitType      `json:"splitType"`
	SplitAmount     []float64      `json:"splitAmount"`
	SplitPercentage []float64      `json:"splitPercentage"`
	Notes           *string        `json:"notes,omitempty"`
	ExpenseDate     time.Time      `json:"expenseDate"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (e *Expense) ToResponse() ExpenseResponse {
	resp := ExpenseResponse{
		ID:              e.ID,
		Title:           e.Title,
		Amount:          e.Amount.InexactFloat64(),
		Currency:        e.Currency,
		PaidByID:        e.PaidByID,
		CategoryID:      e.CategoryID,
		Category:        e.Category,
		SplitWithIDs:    append([]uint{}, e.SplitWithIDs...),
		SplitType:       e.SplitType,
		SplitAmount:     toFloats(e.SplitAmount),
		SplitPercentage: toFloats(e.SplitPercentage),
		Notes:           e.Notes,
		ExpenseDate:     e.ExpenseDate,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}

	if e.PaidBy != nil {
		payer := e.PaidBy.ToResponse()
		resp.PaidBy = &payer
	}

	// Preloaded participants come back in table order; realign them with
	// SplitWithIDs so position i still matches SplitAmount[i].
	if len(e.SplitWith) > 0 {
		byID := make(map[uint]User, len(e.SplitWith))
		for _, u := range e.SplitWith {
			byID[u.ID] = u
		}
		for _, id := range e.SplitWithIDs {
			if u, ok := byID[id]; ok {
				resp.SplitWith = append(resp.SplitWith, u.ToResponse())
			}
		}
	}

	return resp
}

func toFloats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.InexactFloat64()
	}
	return out
}
