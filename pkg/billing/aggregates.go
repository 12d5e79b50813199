package billing

import (
	"github.com/shopspring/decimal"

	"github.com/clientdesk/clientdesk/pkg/model"
)

// BillableHours sums the hours of billable entries.
func BillableHours(entries []model.TimeEntry) decimal.Decimal {
	hours := decimal.Zero
	for i := range entries {
		if entries[i].Billable {
			hours = hours.Add(entries[i].Hours)
		}
	}
	return hours
}

// BillableAmount derives the project's billable value from its rate type:
// hourly projects bill hours × rate, fixed projects bill the fixed price,
// everything else (retainer included) bills zero here.
func BillableAmount(project *model.Project, billableHours decimal.Decimal) decimal.Decimal {
	switch {
	case project.RateType == model.RateHourly && project.HourlyRate != nil:
		return billableHours.Mul(*project.HourlyRate)
	case project.RateType == model.RateFixed && project.FixedPrice != nil:
		return *project.FixedPrice
	default:
		return decimal.Zero
	}
}

// OverBudget reports whether logged billable hours exceed the budget.
// A project without a budget is never over it.
func OverBudget(project *model.Project, billableHours decimal.Decimal) bool {
	if project.BudgetHours == nil || *project.BudgetHours <= 0 {
		return false
	}
	return billableHours.GreaterThan(decimal.NewFromInt(int64(*project.BudgetHours)))
}
