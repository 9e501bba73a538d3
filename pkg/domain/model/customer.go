package model

import "github.com/abcbank/voxteller/pkg/domain/types"

// Customer is one record of the mock banking dataset. The PIN carries the
// masq secret tag so it can never leak through the logger.
type Customer struct {
	ID           types.CustomerID
	PIN          string `masq:"secret"`
	Name         string
	Profile      Profile
	Accounts     []Account
	Cards        []Card
	Transactions []Transaction
	Statements   []Statement
}

// Profile holds the customer's contact details
type Profile struct {
	Address string
	Phone   string
	Email   string
}

// Account is a single bank account
type Account struct {
	ID        string
	Type      string
	Currency  string
	Available float64
}

// Card is a payment card; Status is "active" or "blocked"
type Card struct {
	ID      string
	Status  string
	Last4   string
	Network string
}

// Transaction is one account movement
type Transaction struct {
	ID        string
	Amount    float64
	Merchant  string
	Status    string
	Timestamp string
}

// Statement is a monthly statement reference
type Statement struct {
	ID     string
	Period string
	Format string
}

// Dispute is a filed ATM cash-not-dispensed incident
type Dispute struct {
	ID         string
	CustomerID types.CustomerID
	Type       string
	ATMID      string
	Amount     float64
	Date       string
	Status     string
}
