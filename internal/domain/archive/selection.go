package archive

// TabKind names one of the three record tabs of an archive group.
type TabKind string

const (
	TabStudents  TabKind = "students"
	TabPayments  TabKind = "payments"
	TabDonations TabKind = "donations"
)

// Tabs lists the tab kinds in display order.
var Tabs = []TabKind{TabStudents, TabPayments, TabDonations}

// ParseTabKind validates a tab name.
func ParseTabKind(s string) (TabKind, error) {
	for _, k := range Tabs {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownTab
}

// Label is the button caption for the tab.
func (k TabKind) Label() string {
	switch k {
	case TabStudents:
		return "Students"
	case TabPayments:
		return "Payments"
	case TabDonations:
		return "Donations"
	}
	return string(k)
}

// Tab identifies one open tab on the page.
type Tab struct {
	GroupID int64
	Kind    TabKind
}

// Selection is the page-wide open tab; nil means every tab is closed.
// INVARIANT: at most one tab across all groups is open.
type Selection struct {
	open *Tab
}

// Open returns a selection with the given tab open.
func Open(groupID int64, kind TabKind) Selection {
	return Selection{open: &Tab{GroupID: groupID, Kind: kind}}
}

// Current returns the open tab, if any.
func (s Selection) Current() (Tab, bool) {
	if s.open == nil {
		return Tab{}, false
	}
	return *s.open, true
}

// IsOpen reports whether the given tab is the open one.
func (s Selection) IsOpen(groupID int64, kind TabKind) bool {
	return s.open != nil && s.open.GroupID == groupID && s.open.Kind == kind
}

// Toggle returns the selection after clicking the given tab's button:
// clicking the open tab closes it, clicking any other tab opens that one.
func (s Selection) Toggle(groupID int64, kind TabKind) Selection {
	if s.IsOpen(groupID, kind) {
		return Selection{}
	}
	return Open(groupID, kind)
}
