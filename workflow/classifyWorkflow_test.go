package workflow

import (
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

func testThresholds() models.Thresholds {
	return models.Thresholds{
		SignificantMV: decimal.NewFromInt(25_000_000),
		IRRDiff:       decimal.RequireFromString("0.05"),
		DurationDiff:  decimal.RequireFromString("0.5"),
	}
}

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return &d
}

func TestClassify_Categories(t *testing.T) {
	th := testThresholds()

	cases := []struct {
		name         string
		irrDiff      string
		durationDiff string
		marketValue  string
		expected     models.Category
	}{
		{"aligned small diffs", "0.01", "0.1", "50000000", models.CategoryAlignment},
		{"aligned regardless of materiality", "0.01", "0.1", "1000000", models.CategoryAlignment},
		{"irr discrepancy material", "0.07", "0", "30000000", models.CategorySignificantDiscrepancy},
		{"irr discrepancy immaterial", "0.07", "0", "10000000", models.CategoryDiscrepancyBelowMaterial},
		{"duration discrepancy material", "0", "0.6", "30000000", models.CategorySignificantDiscrepancy},
		{"negative diff uses absolute value", "-0.07", "0", "30000000", models.CategorySignificantDiscrepancy},
		{"no market value never material", "0.07", "0", "", models.CategoryDiscrepancyBelowMaterial},
		{"mv exactly at threshold is not material", "0.07", "0", "25000000", models.CategoryDiscrepancyBelowMaterial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var mv *decimal.Decimal
			if tc.marketValue != "" {
				mv = dec(t, tc.marketValue)
			}
			got := Classify(dec(t, tc.irrDiff), dec(t, tc.durationDiff), mv, th)
			if got == nil {
				t.Fatalf("expected category %q, got none", tc.expected)
			}
			if *got != tc.expected {
				t.Fatalf("expected category %q, got %q", tc.expected, *got)
			}
		})
	}
}

func TestClassify_ThresholdBoundaryIsStrict(t *testing.T) {
	th := testThresholds()
	mv := dec(t, "30000000")
	zero := dec(t, "0")

	if got := Classify(dec(t, "0.05"), zero, mv, th); got == nil || *got != models.CategoryAlignment {
		t.Fatalf("irr diff exactly at threshold must be Alignment, got %v", got)
	}
	if got := Classify(dec(t, "0.0500001"), zero, mv, th); got == nil || *got != models.CategorySignificantDiscrepancy {
		t.Fatalf("irr diff just past threshold must be a discrepancy, got %v", got)
	}
	if got := Classify(zero, dec(t, "0.5"), mv, th); got == nil || *got != models.CategoryAlignment {
		t.Fatalf("duration diff exactly at threshold must be Alignment, got %v", got)
	}
}

func TestClassify_BothDiffsNilIsUncategorized(t *testing.T) {
	th := testThresholds()
	if got := Classify(nil, nil, dec(t, "30000000"), th); got != nil {
		t.Fatalf("expected no category for unevaluable deal, got %q", *got)
	}
	// One present diff is enough to evaluate.
	if got := Classify(dec(t, "0.01"), nil, nil, th); got == nil || *got != models.CategoryAlignment {
		t.Fatalf("expected Alignment with only irr diff present, got %v", got)
	}
	if got := Classify(nil, dec(t, "0.8"), nil, th); got == nil || *got != models.CategoryDiscrepancyBelowMaterial {
		t.Fatalf("expected below-material discrepancy with only duration diff present, got %v", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	th := testThresholds()
	for i := 0; i < 100; i++ {
		a := Classify(dec(t, "0.06"), dec(t, "0.2"), dec(t, "26000000"), th)
		b := Classify(dec(t, "0.06"), dec(t, "0.2"), dec(t, "26000000"), th)
		if a == nil || b == nil || *a != *b {
			t.Fatalf("classification not deterministic: %v vs %v", a, b)
		}
	}
}
