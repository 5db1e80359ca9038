package services

import (
	"strconv"

	"expense-tracker-backend/apperr"
	"expense-tracker-backend/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeSplit returns the share owed by each of participantCount
// participants, in participant order. It has no side effects.
//
// EQUAL and PERCENTAGE shares are rounded to 2 places, half away from zero,
// each on its own. Remainder cents are not redistributed, so 100 split three
// ways yields 33.33 three times. AMOUNT shares are returned as given.
func ComputeSplit(
	amount decimal.Decimal,
	splitType models.SplitType,
	participantCount int,
	callerAmounts []decimal.Decimal,
	callerPercentages []decimal.Decimal,
) ([]decimal.Decimal, error) {
	if participantCount <= 0 {
		return []decimal.Decimal{}, nil
	}

	switch splitType {
	case models.SplitTypeEqual:
		share := amount.DivRound(decimal.NewFromInt(int64(participantCount)), 2)
		shares := make([]decimal.Decimal, participantCount)
		for i := range shares {
			shares[i] = share
		}
		return shares, nil

	case models.SplitTypeAmount:
		if err := checkCount(participantCount, len(callerAmounts)); err != nil {
			return nil, err
		}
		if !decimal.Sum(decimal.Zero, callerAmounts...).Equal(amount) {
			return nil, apperr.ErrSplitSumMismatch.WithParams(map[string]string{
				"amount": amount.String(),
			})
		}
		return append([]decimal.Decimal(nil), callerAmounts...), nil

	case models.SplitTypePercentage:
		if err := checkCount(participantCount, len(callerPercentages)); err != nil {
			return nil, err
		}
		if !decimal.Sum(decimal.Zero, callerPercentages...).Equal(hundred) {
			return nil, apperr.ErrSplitPercentage
		}
		shares := make([]decimal.Decimal, participantCount)
		for i, p := range callerPercentages {
			shares[i] = p.Mul(amount).DivRound(hundred, 2)
		}
		return shares, nil

	default:
		return nil, apperr.ErrSplitType.WithParams(map[string]string{
			"splitType": string(splitType),
		})
	}
}

func checkCount(expected, actual int) error {
	if expected == actual {
		return nil
	}
	return apperr.ErrSplitCount.WithParams(map[string]string{
		"expected": strconv.Itoa(expected),
		"actual":   strconv.Itoa(actual),
	})
}
