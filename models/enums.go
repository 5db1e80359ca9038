package models

// SplitType decides how SplitAmount / SplitPercentage are interpreted.
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypeAmount     SplitType = "AMOUNT"
	SplitTypePercentage SplitType = "PERCENTAGE"
)

// SplitTypes lists every split type in declaration order.
var SplitTypes = []SplitType{SplitTypeEqual, SplitTypeAmount, SplitTypePercentage}

func (s SplitType) Valid() bool {
	switch s {
	case SplitTypeEqual, SplitTypeAmount, SplitTypePercentage:
		return true
	}
	return false
}

type Currency string

const (
	CurrencyGBP   Currency = "GBP"
	CurrencyINR   Currency = "INR"
	CurrencyUSD   Currency = "USD"
	CurrencyEUR   Currency = "EUR"
	CurrencyAUD   Currency = "AUD"
	CurrencyCAD   Currency = "CAD"
	CurrencyJPY   Currency = "JPY"
	CurrencyCNY   Currency = "CNY"
	CurrencyOther Currency = "OTHER"
)

const DefaultCurrency = CurrencyGBP

func (c Currency) Valid() bool {
	switch c {
	case CurrencyGBP, CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyAUD,
		CurrencyCAD, CurrencyJPY, CurrencyCNY, CurrencyOther:
		return true
	}
	return false
}
