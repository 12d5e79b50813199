package billing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/clientdesk/clientdesk/pkg/model"
)

func TestBillableHours(t *testing.T) {
	entries := []model.TimeEntry{
		{Hours: decimal.RequireFromString("5.0"), Billable: true},
		{Hours: decimal.RequireFromString("3.0"), Billable: true},
		{Hours: decimal.RequireFromString("2.0"), Billable: false},
	}

	if got := BillableHours(entries); !got.Equal(decimal.RequireFromString("8.0")) {
		t.Fatalf("expected 8.0 billable hours, got %s", got)
	}
}

func TestBillableAmount(t *testing.T) {
	hours := decimal.RequireFromString("8.0")
	rate := decimal.RequireFromString("100.00")
	price := decimal.RequireFromString("5000.00")

	hourly := &model.Project{RateType: model.RateHourly, HourlyRate: &rate}
	if got := BillableAmount(hourly, hours); !got.Equal(decimal.RequireFromString("800.00")) {
		t.Fatalf("expected 800.00, got %s", got)
	}

	fixed := &model.Project{RateType: model.RateFixed, FixedPrice: &price}
	if got := BillableAmount(fixed, hours); !got.Equal(price) {
		t.Fatalf("expected fixed price 5000.00, got %s", got)
	}

	retainer := &model.Project{RateType: model.RateRetainer}
	if got := BillableAmount(retainer, hours); !got.IsZero() {
		t.Fatalf("expected zero for retainer, got %s", got)
	}

	noRate := &model.Project{RateType: model.RateHourly}
	if got := BillableAmount(noRate, hours); !got.IsZero() {
		t.Fatalf("expected zero without a rate, got %s", got)
	}
}

func TestOverBudget(t *testing.T) {
	budget := 10
	zero := 0

	tests := []struct {
		name    string
		project *model.Project
		hours   string
		want    bool
	}{
		{"under budget", &model.Project{BudgetHours: &budget}, "8.0", false},
		{"at budget", &model.Project{BudgetHours: &budget}, "10.0", false},
		{"over budget", &model.Project{BudgetHours: &budget}, "10.5", true},
		{"no budget", &model.Project{}, "100.0", false},
		{"zero budget", &model.Project{BudgetHours: &zero}, "100.0", false},
	}

	for _, tt := range tests {
		hours := decimal.RequireFromString(tt.hours)
		if got := OverBudget(tt.project, hours); got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
