// Package export writes archived school years as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"schooladmin/internal/application/display"
	"schooladmin/internal/domain/archive"
)

// Sheet names, in workbook order.
const (
	SheetStudents  = "Students"
	SheetPayments  = "Payments"
	SheetDonations = "Donations"
)

// ContentType is the XLSX MIME type.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const pesoFormat = `"₱"#,##0.00`

type sheet struct {
	title  string
	header []string
	rows   [][]any
	money  int // 1-based column holding amounts, 0 for none
}

// WriteGroup writes one school year's students, payments and donations as
// three sheets. Missing amounts are written as zero and missing dates as "—".
func WriteGroup(w io.Writer, g archive.Group) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []sheet{
		{title: SheetStudents, header: []string{"Last Name", "First Name"}, rows: studentRows(g.Students)},
		{title: SheetPayments, header: []string{"Student", "Amount Paid", "Payment Date"}, rows: paymentRows(g.Payments), money: 2},
		{title: SheetDonations, header: []string{"Donated By", "Amount", "Donation Date"}, rows: donationRows(g.Donations), money: 2},
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(pesoFormat)})
	if err != nil {
		return err
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.title); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.title); err != nil {
			return fmt.Errorf("new sheet %s: %w", s.title, err)
		}
		if err := writeSheet(f, s, bold, money); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, bold, money int) error {
	if err := f.SetSheetRow(s.title, "A1", &s.header); err != nil {
		return fmt.Errorf("%s header: %w", s.title, err)
	}
	for r, row := range s.rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(s.title, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", s.title, r+2, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(s.header))
	if err := f.SetCellStyle(s.title, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("%s header style: %w", s.title, err)
	}
	if len(s.rows) > 0 {
		if err := f.AutoFilter(s.title, fmt.Sprintf("A1:%s%d", last, len(s.rows)+1), nil); err != nil {
			return fmt.Errorf("%s autofilter: %w", s.title, err)
		}
	}
	if s.money > 0 && len(s.rows) > 0 {
		top, _ := excelize.CoordinatesToCellName(s.money, 2)
		bottom, _ := excelize.CoordinatesToCellName(s.money, len(s.rows)+1)
		if err := f.SetCellStyle(s.title, top, bottom, money); err != nil {
			return fmt.Errorf("%s amount style: %w", s.title, err)
		}
	}
	for c := range s.header {
		col, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(s.title, col, col, columnWidth(s, c)); err != nil {
			return fmt.Errorf("%s column %s width: %w", s.title, col, err)
		}
	}
	return nil
}

// columnWidth estimates a width from the header and the first 50 rows.
func columnWidth(s sheet, c int) float64 {
	longest := len([]rune(s.header[c]))
	for r := 0; r < min(50, len(s.rows)); r++ {
		if v, ok := s.rows[r][c].(string); ok && len([]rune(v)) > longest {
			longest = len([]rune(v))
		}
	}
	return max(12, min(40, float64(longest)*1.1))
}

func studentRows(students []archive.Student) [][]any {
	rows := make([][]any, 0, len(students))
	for _, s := range students {
		rows = append(rows, []any{s.LastName, s.FirstName})
	}
	return rows
}

func paymentRows(payments []archive.Payment) [][]any {
	rows := make([][]any, 0, len(payments))
	for _, p := range payments {
		name := p.StudentName()
		if name == "" {
			name = display.Missing
		}
		rows = append(rows, []any{name, amount(p.AmountPaid), display.FormatDate(p.PaymentDate)})
	}
	return rows
}

func donationRows(donations []archive.Donation) [][]any {
	rows := make([][]any, 0, len(donations))
	for _, d := range donations {
		rows = append(rows, []any{d.DonatedBy, amount(d.DonationAmount), display.FormatDate(d.DonationDate)})
	}
	return rows
}

func amount(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func ptr[T any](v T) *T { return &v }

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// Filename builds the download name for a school year's export.
func Filename(schoolYear string) string {
	name := strings.Join(strings.Fields(schoolYear), " ")
	name = unsafeFileChars.ReplaceAllString(name, "_")
	if name == "" {
		name = "archive"
	}
	return "archive-" + name + ".xlsx"
}
