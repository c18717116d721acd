package models

import (
	"math"
	"time"
)

// PaymentStatus is the settlement state of an invoice.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

// LineItem is a single row on an invoice.
type LineItem struct {
	Name     string  `json:"name" bson:"name"`
	Quantity float64 `json:"quantity" bson:"quantity"`
	Price    float64 `json:"price" bson:"price"`
	Total    float64 `json:"total" bson:"total"`
}

// Invoice is a billing document. InvoiceID is the human-readable sequence
// number (e.g. INV00001) and never changes once assigned. Customer is the
// billed name; when CustomerID links a stored customer the name is copied
// from it at creation and does not follow later edits of that customer.
type Invoice struct {
	ID            string        `json:"id" bson:"_id"`
	InvoiceID     string        `json:"invoiceId" bson:"invoiceId"`
	CustomerID    string        `json:"customerId,omitempty" bson:"customerId,omitempty"`
	Customer      string        `json:"customer" bson:"customer"`
	Date          string        `json:"date" bson:"date"`
	Items         []LineItem    `json:"items" bson:"items"`
	GrandTotal    float64       `json:"grandTotal" bson:"grandTotal"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// ComputeTotals fills in every line total and the grand total from
// quantities and unit prices, rounded to cents.
func (inv *Invoice) ComputeTotals() {
	var grand float64
	for i := range inv.Items {
		inv.Items[i].Total = roundCents(inv.Items[i].Quantity * inv.Items[i].Price)
		grand += inv.Items[i].Total
	}
	inv.GrandTotal = roundCents(grand)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
