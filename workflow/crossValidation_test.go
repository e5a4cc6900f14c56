package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

// Full pipeline over a two-deal book: Alpha is material with a 0.07 IRR
// gap, Beta is discrepant but too small to matter.
func TestPipeline_TwoDealScenario(t *testing.T) {
	th := testThresholds()

	aat := []*models.AATRecord{
		{DealName: "Alpha", PortfolioManager: "Jordan Li", IRR: dec(t, "0.03"), Duration: dec(t, "4.0"), MarketValue: dec(t, "30000000")},
		{DealName: "Beta", PortfolioManager: "Sam Reyes", IRR: dec(t, "0.02"), Duration: dec(t, "3.0"), MarketValue: dec(t, "10000000")},
	}
	status := []*models.StatusRecord{
		{DealName: "Alpha", Instrument: "Term Loan", CurrentIRR: dec(t, "0.01")},
		{DealName: "Alpha", CurrentIRR: dec(t, "0.10"), PriorIRR: dec(t, "0.09"), Duration: dec(t, "4.0")},
		{DealName: "Beta", CurrentIRR: dec(t, "0.08"), PriorIRR: dec(t, "0.08"), Duration: dec(t, "3.0")},
	}

	deals := MergeDealTables(aat, status, testLogger())
	DeriveMetrics(deals, models.OwnerMap{"Jordan Li": "Analytics East"})
	RankByMarketValue(deals)
	ClassifyDeals(deals, th)
	snap := BuildSnapshot("20251130", models.DateLabels{Current: "11/30/25", Prior: "10/31/25"}, deals, th)

	if len(snap.Deals) != 2 || snap.Deals[0].Name != "Alpha" || snap.Deals[1].Name != "Beta" {
		t.Fatalf("expected [Alpha Beta] by market value, got %+v", snap.Deals)
	}

	alpha, beta := snap.Deals[0], snap.Deals[1]

	if alpha.Category == nil || *alpha.Category != models.CategorySignificantDiscrepancy {
		t.Fatalf("Alpha must be a significant discrepancy, got %v", alpha.Category)
	}
	if beta.Category == nil || *beta.Category != models.CategoryDiscrepancyBelowMaterial {
		t.Fatalf("Beta must be flagged but ignored, got %v", beta.Category)
	}

	if alpha.MVPercent == nil || !alpha.MVPercent.Equal(*dec(t, "75")) {
		t.Fatalf("Alpha MV %% must be 75, got %v", alpha.MVPercent)
	}
	if beta.CumulativeMVPercent == nil || !beta.CumulativeMVPercent.Equal(*dec(t, "100")) {
		t.Fatalf("cumulative MV %% must reach 100 at Beta, got %v", beta.CumulativeMVPercent)
	}

	// Views: only the material discrepancy surfaces for review.
	if len(snap.IRRDiffs) != 1 || snap.IRRDiffs[0].Name != "Alpha" {
		t.Fatalf("IRR diff view must hold exactly Alpha, got %+v", snap.IRRDiffs)
	}
	if len(snap.DurationDiffs) != 0 {
		t.Fatalf("no duration discrepancies expected, got %+v", snap.DurationDiffs)
	}
	if len(snap.MissingData) != 0 {
		t.Fatalf("no missing data expected, got %+v", snap.MissingData)
	}
	if alpha.PMOwner == nil || *alpha.PMOwner != "Analytics East" {
		t.Fatalf("Alpha owner mapping lost: %v", alpha.PMOwner)
	}
}

func TestBuildSnapshot_MissingDataView(t *testing.T) {
	th := testThresholds()
	deals := []*models.Deal{
		{Name: "Complete", AATIRR: dec(t, "0.02"), AATDuration: dec(t, "3.0")},
		{Name: "NoIRR", AATDuration: dec(t, "2.0"), LiqCap: dec(t, "5000000")},
		{Name: "NoDuration", AATIRR: dec(t, "0.01"), LiqCap: dec(t, "40000000")},
		{Name: "NoEither"},
	}

	snap := BuildSnapshot("20251130", models.DateLabels{Current: "11/30/25", Prior: "10/31/25"}, deals, th)

	if len(snap.MissingData) != 3 {
		t.Fatalf("expected 3 deals with missing AAT data, got %d", len(snap.MissingData))
	}
	// Liquidation cap descending, nil cap last.
	if snap.MissingData[0].Name != "NoDuration" || snap.MissingData[1].Name != "NoIRR" || snap.MissingData[2].Name != "NoEither" {
		t.Fatalf("missing view must rank by liq cap, got %s %s %s",
			snap.MissingData[0].Name, snap.MissingData[1].Name, snap.MissingData[2].Name)
	}
}

func TestBuildLargeDealRows(t *testing.T) {
	deals := []*models.Deal{
		{Name: "Big", LiqCap: dec(t, "60000000")},
		{Name: "Mid", LiqCap: dec(t, "30000000")},
		{Name: "Excluded Holdings", LiqCap: dec(t, "90000000")},
		{Name: "Small", LiqCap: dec(t, "10000000")},
		{Name: "NoCap"},
	}

	rows := BuildLargeDealRows(deals, []string{"Excluded"})
	if len(rows) != 4 {
		t.Fatalf("expected excluded deal dropped, got %d rows", len(rows))
	}
	if rows[0].Deal.Name != "Big" || rows[1].Deal.Name != "Mid" || rows[2].Deal.Name != "Small" {
		t.Fatalf("expected liq-cap descending order, got %s %s %s",
			rows[0].Deal.Name, rows[1].Deal.Name, rows[2].Deal.Name)
	}
	if rows[0].LCPercent == nil || !rows[0].LCPercent.Equal(*dec(t, "60")) {
		t.Fatalf("Big must carry 60%% of liq cap, got %v", rows[0].LCPercent)
	}
	if !rows[0].TopTen || !rows[2].TopTen {
		t.Fatalf("capped deals in the first ten must be flagged")
	}
	if rows[3].Deal.Name != "NoCap" || rows[3].TopTen || rows[3].LCPercent != nil {
		t.Fatalf("deal without cap must sort last, unflagged: %+v", rows[3])
	}
}
