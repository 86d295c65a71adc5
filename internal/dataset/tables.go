package dataset

import "strings"

// Customer is one row of the customers workbook.
type Customer struct {
	CustomerID string
	Name       string
	Email      string
}

// Loan is one row of the loans workbook.
type Loan struct {
	LoanID     string
	CustomerID string
	EMIDueDate string
	EMIAmount  string
	EMIStatus  string
}

// LoanDetails is a loan joined with its fee row. Fees holds the raw fee
// columns; the fee schema varies and is passed through to the prompt as-is.
type LoanDetails struct {
	Loan
	Fees map[string]string
}

// Tables indexes the three datasets for lookup by the reply generator.
type Tables struct {
	customersByEmail map[string]Customer
	loansByCustomer  map[string]Loan
	feesByLoan       map[string]map[string]string
}

// NewTables builds the indexes from raw worksheet rows (header row first).
func NewTables(customers, fees, loans [][]string) *Tables {
	t := &Tables{
		customersByEmail: make(map[string]Customer),
		loansByCustomer:  make(map[string]Loan),
		feesByLoan:       make(map[string]map[string]string),
	}

	for _, row := range indexRows(customers) {
		c := Customer{
			CustomerID: row["customer_id"],
			Name:       row["name"],
			Email:      strings.ToLower(row["email"]),
		}
		if c.Email != "" {
			t.customersByEmail[c.Email] = c
		}
	}

	for _, row := range indexRows(loans) {
		l := Loan{
			LoanID:     row["loan_id"],
			CustomerID: row["customer_id"],
			EMIDueDate: row["emi_due_date"],
			EMIAmount:  row["emi_amount"],
			EMIStatus:  row["emi_status"],
		}
		if l.CustomerID != "" {
			t.loansByCustomer[l.CustomerID] = l
		}
	}

	for _, row := range indexRows(fees) {
		if id := row["loan_id"]; id != "" {
			t.feesByLoan[id] = row
		}
	}

	return t
}

// CustomerByEmail looks up a customer by normalized email address.
func (t *Tables) CustomerByEmail(email string) (Customer, bool) {
	c, ok := t.customersByEmail[strings.ToLower(strings.TrimSpace(email))]
	return c, ok
}

// LoanForCustomer returns the customer's loan with any fee row attached.
// The fee row may be absent; the loan is still returned.
func (t *Tables) LoanForCustomer(customerID string) (LoanDetails, bool) {
	l, ok := t.loansByCustomer[customerID]
	if !ok {
		return LoanDetails{}, false
	}
	details := LoanDetails{Loan: l, Fees: map[string]string{}}
	if fees, ok := t.feesByLoan[l.LoanID]; ok {
		details.Fees = fees
	}
	return details, true
}

// indexRows turns [header, rows...] into maps keyed by lower-cased header.
func indexRows(rows [][]string) []map[string]string {
	if len(rows) < 2 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, cell := range row {
			if i < len(header) && header[i] != "" {
				m[header[i]] = strings.TrimSpace(cell)
			}
		}
		out = append(out, m)
	}
	return out
}
