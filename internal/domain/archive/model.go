package archive

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrSchoolYearNotFound = errors.New("school year not found")
	ErrUnknownTab         = errors.New("unknown archive tab")
)

// SchoolYear is the root of an archive group.
type SchoolYear struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Remarks string `json:"remarks,omitempty"` // markdown
}

// Student is an archived enrolment record.
type Student struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Payment is an archived tuition payment. Student is nil when the payer
// record no longer exists.
type Payment struct {
	ID          int64    `json:"id"`
	Student     *Student `json:"student"`
	AmountPaid  *float64 `json:"amount_paid"`
	PaymentDate Date     `json:"payment_date"`
}

// StudentName returns the payer's name or "" when unknown.
func (p Payment) StudentName() string {
	if p.Student == nil {
		return ""
	}
	return p.Student.FullName()
}

// Donation is an archived donation record.
type Donation struct {
	ID             int64    `json:"id"`
	DonatedBy      string   `json:"donated_by"`
	DonationAmount *float64 `json:"donation_amount"`
	DonationDate   Date     `json:"donation_date"`
}

// Group is a frozen snapshot of one school year's records.
type Group struct {
	SchoolYear SchoolYear `json:"school_year"`
	Students   []Student  `json:"students"`
	Payments   []Payment  `json:"payments"`
	Donations  []Donation `json:"donations"`
}

// TotalPaid sums payment amounts, treating missing amounts as zero.
func (g Group) TotalPaid() float64 {
	var total float64
	for _, p := range g.Payments {
		if p.AmountPaid != nil {
			total += *p.AmountPaid
		}
	}
	return total
}

// TotalDonated sums donation amounts, treating missing amounts as zero.
func (g Group) TotalDonated() float64 {
	var total float64
	for _, d := range g.Donations {
		if d.DonationAmount != nil {
			total += *d.DonationAmount
		}
	}
	return total
}
