// Package archives models the archived school-year browser: a read-only list
// of year panels, each with three record tabs, of which at most one is open
// across the whole page.
package archives

import (
	"context"
	"sync"

	"schooladmin/internal/application/display"
	"schooladmin/internal/domain/archive"
)

// Placeholder texts.
const (
	EmptyMessage     = "No archived school years."
	NoRecordsMessage = "No records found."
)

// Source supplies the page payload.
type Source interface {
	ListArchives(ctx context.Context) ([]archive.Group, error)
}

// Browser holds the groups and the page-wide tab selection.
type Browser struct {
	mu     sync.Mutex
	groups []archive.Group
	sel    archive.Selection
}

// NewBrowser creates a browser over groups with an initial selection. A
// selection naming a group that is not present is dropped.
func NewBrowser(groups []archive.Group, sel archive.Selection) *Browser {
	b := &Browser{groups: groups}
	if tab, ok := sel.Current(); ok && b.hasGroup(tab.GroupID) {
		b.sel = sel
	}
	return b
}

// Load fetches the payload and starts with every tab closed.
func Load(ctx context.Context, src Source) (*Browser, error) {
	groups, err := src.ListArchives(ctx)
	if err != nil {
		return nil, err
	}
	return NewBrowser(groups, archive.Selection{}), nil
}

// Empty reports whether there are no archived years to show.
func (b *Browser) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.groups) == 0
}

// Selection returns the current selection.
func (b *Browser) Selection() archive.Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sel
}

// Toggle applies a tab button click and returns the new selection. Clicks on
// tabs of unknown groups are ignored.
func (b *Browser) Toggle(groupID int64, kind archive.TabKind) archive.Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hasGroup(groupID) {
		b.sel = b.sel.Toggle(groupID, kind)
	}
	return b.sel
}

func (b *Browser) hasGroup(id int64) bool {
	for _, g := range b.groups {
		if g.SchoolYear.ID == id {
			return true
		}
	}
	return false
}

// Panel is the render model of one school year.
type Panel struct {
	SchoolYear   archive.SchoolYear
	Tabs         []TabButton
	Open         archive.TabKind // "" when none of this panel's tabs is open
	Students     []StudentRow
	Payments     []PaymentRow
	Donations    []DonationRow
	TotalPaid    string
	TotalDonated string
	Counts       map[archive.TabKind]int
}

// OpenEmpty reports whether the open tab has no records.
func (p Panel) OpenEmpty() bool {
	return p.Open != "" && p.Counts[p.Open] == 0
}

// TabButton is the render model of one tab button.
type TabButton struct {
	Kind  archive.TabKind
	Label string
	Open  bool
	Next  archive.Selection // selection after clicking this button
}

// StudentRow is one formatted student.
type StudentRow struct {
	Name string
}

// PaymentRow is one formatted payment.
type PaymentRow struct {
	Student string
	Amount  string
	Date    string
}

// DonationRow is one formatted donation.
type DonationRow struct {
	DonatedBy string
	Amount    string
	Date      string
}

// Panels builds the render models. Rows are only built for the open tab.
func (b *Browser) Panels() []Panel {
	b.mu.Lock()
	defer b.mu.Unlock()

	panels := make([]Panel, 0, len(b.groups))
	for _, g := range b.groups {
		id := g.SchoolYear.ID
		p := Panel{
			SchoolYear:   g.SchoolYear,
			TotalPaid:    display.FormatPesoValue(g.TotalPaid()),
			TotalDonated: display.FormatPesoValue(g.TotalDonated()),
			Counts: map[archive.TabKind]int{
				archive.TabStudents:  len(g.Students),
				archive.TabPayments:  len(g.Payments),
				archive.TabDonations: len(g.Donations),
			},
		}
		for _, kind := range archive.Tabs {
			open := b.sel.IsOpen(id, kind)
			if open {
				p.Open = kind
			}
			p.Tabs = append(p.Tabs, TabButton{Kind: kind, Label: kind.Label(), Open: open, Next: b.sel.Toggle(id, kind)})
		}
		switch p.Open {
		case archive.TabStudents:
			p.Students = studentRows(g.Students)
		case archive.TabPayments:
			p.Payments = paymentRows(g.Payments)
		case archive.TabDonations:
			p.Donations = donationRows(g.Donations)
		}
		panels = append(panels, p)
	}
	return panels
}

func studentRows(students []archive.Student) []StudentRow {
	rows := make([]StudentRow, 0, len(students))
	for _, s := range students {
		rows = append(rows, StudentRow{Name: s.FullName()})
	}
	return rows
}

func paymentRows(payments []archive.Payment) []PaymentRow {
	rows := make([]PaymentRow, 0, len(payments))
	for _, p := range payments {
		name := p.StudentName()
		if name == "" {
			name = display.Missing
		}
		rows = append(rows, PaymentRow{Student: name, Amount: display.FormatPeso(p.AmountPaid), Date: display.FormatDate(p.PaymentDate)})
	}
	return rows
}

func donationRows(donations []archive.Donation) []DonationRow {
	rows := make([]DonationRow, 0, len(donations))
	for _, d := range donations {
		rows = append(rows, DonationRow{DonatedBy: d.DonatedBy, Amount: display.FormatPeso(d.DonationAmount), Date: display.FormatDate(d.DonationDate)})
	}
	return rows
}
