package export

import (
	"testing"
	"time"

	"tripledger/internal/expense"
	"tripledger/internal/money"
	"tripledger/internal/payment"
	"tripledger/internal/settlement"
	"tripledger/internal/trip"
)

func TestBuildWorkbookWritesAllSheets(t *testing.T) {
	tr := trip.Trip{ID: "trip-1", Name: "Lake House"}
	expenses := []expense.Expense{
		{Title: "Groceries", PaidByID: "u1", Subtotal: 1000, Tax: 80, Total: 1080, CreatedAt: time.Now()},
	}
	payments := []payment.Payment{
		{FromUserID: "u2", ToUserID: "u1", Amount: 540, Status: payment.StatusConfirmed, CreatedAt: time.Now()},
	}
	balances := map[string]money.Cents{"u1": 540, "u2": -540}
	transfers := []settlement.Transfer{{FromUserID: "u2", ToUserID: "u1", Amount: 540}}
	names := map[string]string{"u1": "alice", "u2": "bob"}

	wb, err := BuildWorkbook(tr, expenses, payments, balances, transfers, names)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	sheets := wb.GetSheetList()
	for _, want := range []string{"Expenses", "Payments", "Balances", "Settlements"} {
		found := false
		for _, s := range sheets {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing sheet %q, got %+v", want, sheets)
		}
	}

	if v, _ := wb.GetCellValue("Expenses", "A2"); v != "Groceries" {
		t.Fatalf("expense title: got %q", v)
	}
	if v, _ := wb.GetCellValue("Payments", "A2"); v != "bob" {
		t.Fatalf("payment from name: got %q", v)
	}
	if v, _ := wb.GetCellValue("Settlements", "C2"); v != "5.40" {
		t.Fatalf("settlement amount: got %q", v)
	}
}

func TestDisplayNameFallsBackToID(t *testing.T) {
	if got := displayName(map[string]string{}, "u9"); got != "u9" {
		t.Fatalf("got %q", got)
	}
}
