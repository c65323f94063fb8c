package dto

import (
	"time"

	"github.com/SscSPs/licoreria_pos/internal/utils"
	"github.com/shopspring/decimal"
)

// ReportRangeParams are the optional calendar bounds of a report.
type ReportRangeParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// SeriesParams select a bucketed series.
type SeriesParams struct {
	ReportRangeParams
	Period string `form:"period" binding:"omitempty,oneof=day week month"`
}

// TopProductsParams limit the best sellers list.
type TopProductsParams struct {
	ReportRangeParams
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// HourlyParams pick the day of the hourly chart; today when absent.
type HourlyParams struct {
	Date *time.Time `form:"date" time_format:"2006-01-02"`
}

// FormatAmount is the display form used across responses.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return utils.FormatMoney(amount, currency)
}
