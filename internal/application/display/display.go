// Package display formats archive values the way the admin screens show them.
package display

import (
	"github.com/dustin/go-humanize"

	"schooladmin/internal/domain/archive"
)

// PesoSign prefixes formatted amounts.
const PesoSign = "₱"

// Missing is shown in place of absent values.
const Missing = "—"

// MissingDate is shown for absent or unparseable dates.
const MissingDate = Missing

// DateLayout is the display layout for archive dates.
const DateLayout = "Jan 2, 2006"

// FormatPeso renders an amount in Philippine pesos with thousands grouping and
// two decimals. A nil amount renders as zero.
func FormatPeso(amount *float64) string {
	var v float64
	if amount != nil {
		v = *amount
	}
	return FormatPesoValue(v)
}

// FormatPesoValue is FormatPeso for a present amount.
func FormatPesoValue(v float64) string {
	if v < 0 {
		return "-" + PesoSign + humanize.FormatFloat("#,###.##", -v)
	}
	return PesoSign + humanize.FormatFloat("#,###.##", v)
}

// FormatDate renders a date for display, or MissingDate when absent.
func FormatDate(d archive.Date) string {
	if !d.Valid() {
		return MissingDate
	}
	return d.Format(DateLayout)
}
