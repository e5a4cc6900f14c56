package workflow

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestMergeDealTables_AggregateRowsOnly(t *testing.T) {
	aat := []*models.AATRecord{
		{DealName: "Alpha"},
		{DealName: "Beta"},
	}
	// Two instrument rows per deal plus one aggregate row each; only the
	// aggregate may feed the join.
	status := []*models.StatusRecord{
		{DealName: "Alpha", Instrument: "Term Loan A", CurrentIRR: dec(t, "0.01")},
		{DealName: "Alpha", Instrument: "Revolver", CurrentIRR: dec(t, "0.02")},
		{DealName: "Alpha", CurrentIRR: dec(t, "0.10")},
		{DealName: "Beta", Instrument: "Term Loan B", CurrentIRR: dec(t, "0.03")},
		{DealName: "Beta", CurrentIRR: dec(t, "0.08")},
	}

	deals := MergeDealTables(aat, status, testLogger())
	if len(deals) != 2 {
		t.Fatalf("expected 2 merged deals, got %d", len(deals))
	}
	if deals[0].ECFIRR == nil || !deals[0].ECFIRR.Equal(*dec(t, "0.10")) {
		t.Fatalf("Alpha must join against its aggregate row, got ECF IRR %v", deals[0].ECFIRR)
	}
	if deals[1].ECFIRR == nil || !deals[1].ECFIRR.Equal(*dec(t, "0.08")) {
		t.Fatalf("Beta must join against its aggregate row, got ECF IRR %v", deals[1].ECFIRR)
	}
}

func TestMergeDealTables_LeftJoinKeepsUnmatchedDeals(t *testing.T) {
	aat := []*models.AATRecord{
		{DealName: "Alpha", IRR: dec(t, "0.04")},
		{DealName: "Orphan", IRR: dec(t, "0.03")},
	}
	status := []*models.StatusRecord{
		{DealName: "Alpha", CurrentIRR: dec(t, "0.10"), Duration: dec(t, "4.2")},
	}

	deals := MergeDealTables(aat, status, testLogger())
	if len(deals) != 2 {
		t.Fatalf("left join must keep every AAT deal, got %d of 2", len(deals))
	}

	orphan := deals[1]
	if orphan.Name != "Orphan" {
		t.Fatalf("expected Orphan second, got %q", orphan.Name)
	}
	if orphan.ECFIRR != nil || orphan.ECFDuration != nil || orphan.PriorECFIRR != nil {
		t.Fatalf("unmatched deal must keep nil ECF fields: %+v", orphan)
	}
	if orphan.AATIRR == nil {
		t.Fatalf("unmatched deal must keep its AAT fields")
	}
}

func TestMergeDealTables_DuplicatesKeepFirst(t *testing.T) {
	aat := []*models.AATRecord{
		{DealName: "Alpha", PortfolioManager: "First"},
		{DealName: "Alpha", PortfolioManager: "Second"},
		{DealName: "Beta"},
	}
	status := []*models.StatusRecord{
		{DealName: "Alpha", CurrentIRR: dec(t, "0.10")},
		{DealName: "Alpha", CurrentIRR: dec(t, "0.99")},
	}

	deals := MergeDealTables(aat, status, testLogger())
	if len(deals) != 2 {
		t.Fatalf("expected duplicates dropped, got %d deals", len(deals))
	}
	if deals[0].PortfolioManager != "First" {
		t.Fatalf("first occurrence must win, got %q", deals[0].PortfolioManager)
	}
	if !deals[0].ECFIRR.Equal(*dec(t, "0.10")) {
		t.Fatalf("first aggregate must win, got %v", deals[0].ECFIRR)
	}
}
