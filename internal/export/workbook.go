// Package export renders a trip's ledger into a downloadable workbook:
// one sheet each for expenses, payments, balances and suggested
// settlements.
package export

import (
	"fmt"

	"tripledger/internal/expense"
	"tripledger/internal/money"
	"tripledger/internal/payment"
	"tripledger/internal/settlement"
	"tripledger/internal/trip"

	"github.com/xuri/excelize/v2"
)

// displayName resolves a user ID to a readable label, falling back to
// the raw ID when no name is known.
func displayName(names map[string]string, userID string) string {
	if n, ok := names[userID]; ok && n != "" {
		return n
	}
	return userID
}

// BuildWorkbook renders the full export: one sheet each for expenses,
// payments, balances and suggested settlements. It is pure — no I/O,
// no persistence — so it can be unit tested without a database.
func BuildWorkbook(t trip.Trip, expenses []expense.Expense, payments []payment.Payment, balances map[string]money.Cents, transfers []settlement.Transfer, names map[string]string) (*excelize.File, error) {
	f := excelize.NewFile()
	defer f.DeleteSheet("Sheet1")

	if err := writeExpensesSheet(f, expenses, names); err != nil {
		return nil, err
	}
	if err := writePaymentsSheet(f, payments, names); err != nil {
		return nil, err
	}
	if err := writeBalancesSheet(f, balances, names); err != nil {
		return nil, err
	}
	if err := writeSettlementsSheet(f, transfers, names); err != nil {
		return nil, err
	}

	f.SetDocProps(&excelize.DocProperties{Title: t.Name})
	return f, nil
}

func newSheet(f *excelize.File, name string, headers []string) (int, error) {
	idx, err := f.NewSheet(name)
	if err != nil {
		return 0, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(name, cell, h)
	}
	return idx, nil
}

func writeExpensesSheet(f *excelize.File, expenses []expense.Expense, names map[string]string) error {
	const sheet = "Expenses"
	if _, err := newSheet(f, sheet, []string{"Title", "Paid By", "Subtotal", "Tax", "Tip", "Total", "Created At"}); err != nil {
		return err
	}
	for i, e := range expenses {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.Title)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), displayName(names, e.PaidByID))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), money.Cents(e.Subtotal).String())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), money.Cents(e.Tax).String())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), money.Cents(e.Tip).String())
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), money.Cents(e.Total).String())
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), e.CreatedAt.Format("2006-01-02 15:04"))
	}
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 16)
	return nil
}

func writePaymentsSheet(f *excelize.File, payments []payment.Payment, names map[string]string) error {
	const sheet = "Payments"
	if _, err := newSheet(f, sheet, []string{"From", "To", "Amount", "Method", "Status", "Created At"}); err != nil {
		return err
	}
	for i, p := range payments {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), displayName(names, p.FromUserID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), displayName(names, p.ToUserID))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), money.Cents(p.Amount).String())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.Method)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.Status)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func writeBalancesSheet(f *excelize.File, balances map[string]money.Cents, names map[string]string) error {
	const sheet = "Balances"
	if _, err := newSheet(f, sheet, []string{"Member", "Balance"}); err != nil {
		return err
	}
	row := 2
	for uid, b := range balances {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), displayName(names, uid))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.String())
		row++
	}
	return nil
}

func writeSettlementsSheet(f *excelize.File, transfers []settlement.Transfer, names map[string]string) error {
	const sheet = "Settlements"
	if _, err := newSheet(f, sheet, []string{"From", "To", "Amount"}); err != nil {
		return err
	}
	for i, tr := range transfers {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), displayName(names, tr.FromUserID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), displayName(names, tr.ToUserID))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), tr.Amount.String())
	}
	return nil
}
