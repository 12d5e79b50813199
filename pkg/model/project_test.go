package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProjectIsActive(t *testing.T) {
	project := &Project{Status: ProjectActive}
	if !project.IsActive() {
		t.Fatal("expected active project")
	}

	project.Status = ProjectArchived
	if project.IsActive() {
		t.Fatal("archived project should not be active")
	}
}

func TestTimeEntryBillableAmount(t *testing.T) {
	rate := decimal.RequireFromString("100.00")
	project := &Project{RateType: RateHourly, HourlyRate: &rate}

	entry := &TimeEntry{Hours: decimal.RequireFromString("2.50"), Billable: true}
	if got := entry.BillableAmount(project); !got.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("expected 250.00, got %s", got)
	}

	entry.Billable = false
	if got := entry.BillableAmount(project); !got.IsZero() {
		t.Fatalf("expected zero for non-billable entry, got %s", got)
	}

	entry.Billable = true
	if got := entry.BillableAmount(&Project{RateType: RateHourly}); !got.IsZero() {
		t.Fatalf("expected zero without a rate, got %s", got)
	}
}

func TestValidRateType(t *testing.T) {
	for _, rateType := range []RateType{RateHourly, RateFixed, RateRetainer} {
		if !ValidRateType(rateType) {
			t.Fatalf("expected %q to be valid", rateType)
		}
	}
	if ValidRateType("daily") {
		t.Fatal("expected unknown rate type to be invalid")
	}
}
