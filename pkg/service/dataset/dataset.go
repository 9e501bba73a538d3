package dataset

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Store is the in-memory mock banking dataset backing the tool handlers.
// It is shared across all sessions; every mutation runs under the store
// lock so per-customer updates are atomic.
type Store struct {
	mu        sync.RWMutex
	customers map[types.CustomerID]*model.Customer
	// byFoldedID resolves identifier lookups ignoring case and separator
	// characters, without changing how IDs are displayed.
	byFoldedID map[string]types.CustomerID
	cardOwners map[string]types.CustomerID
	disputes   map[string]*model.Dispute
	disputeSeq int64
}

var (
	ErrCustomerNotFound  = goerr.New("customer not found")
	ErrCardNotFound      = goerr.New("card not found")
	ErrStatementNotFound = goerr.New("statement not found")
)

// New returns an empty store
func New() *Store {
	return &Store{
		customers:  make(map[types.CustomerID]*model.Customer),
		byFoldedID: make(map[string]types.CustomerID),
		cardOwners: make(map[string]types.CustomerID),
		disputes:   make(map[string]*model.Dispute),
	}
}

// NewSeeded returns a store preloaded with the demo customer
func NewSeeded() *Store {
	s := New()
	s.AddCustomer(&model.Customer{
		ID:   "user_123",
		PIN:  "1234",
		Name: "John Doe",
		Profile: model.Profile{
			Address: "12 Main St, Springfield, IL 62701",
			Phone:   "+1-202-555-0100",
			Email:   "john.doe@example.com",
		},
		Accounts: []model.Account{
			{ID: "acc_123", Type: "checking", Currency: "USD", Available: 5000.00},
		},
		Cards: []model.Card{
			{ID: "card_123", Status: "active", Last4: "4242", Network: "VISA"},
		},
		Transactions: []model.Transaction{
			{ID: "tx_1", Amount: -50.00, Merchant: "Walmart", Status: "completed", Timestamp: "2026-01-20T12:01:00Z"},
			{ID: "tx_2", Amount: -12.00, Merchant: "Netflix", Status: "completed", Timestamp: "2026-01-19T08:30:00Z"},
			{ID: "tx_3", Amount: -100.00, Merchant: "Unknown", Status: "declined", Timestamp: "2026-01-18T15:12:00Z"},
		},
		Statements: []model.Statement{
			{ID: "st_202512", Period: "2025-12", Format: "pdf"},
			{ID: "st_202511", Period: "2025-11", Format: "pdf"},
		},
	})
	return s
}

// AddCustomer registers a customer and indexes its cards
func (s *Store) AddCustomer(c *model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers[c.ID] = c
	s.byFoldedID[foldIdentifier(c.ID.String())] = c.ID
	for _, card := range c.Cards {
		s.cardOwners[card.ID] = c.ID
	}
}

// foldIdentifier produces the lookup key for an identifier: lower-cased
// with separator characters removed, so "John 123", "john-123" and
// "John123" all resolve to the same record.
func foldIdentifier(identifier string) string {
	var b strings.Builder
	b.Grow(len(identifier))
	for _, r := range strings.ToLower(identifier) {
		switch r {
		case ' ', '\t', '-', '.', ',', '_', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Resolve maps a normalized identifier to the canonical customer ID,
// ignoring case and separators.
func (s *Store) Resolve(identifier string) (types.CustomerID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byFoldedID[foldIdentifier(identifier)]
	return id, ok
}

// VerifyPIN checks a normalized PIN against the stored credential
func (s *Store) VerifyPIN(customerID types.CustomerID, pin string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	return ok && c.PIN == pin
}

// Balance returns the customer's primary account
func (s *Store) Balance(customerID types.CustomerID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	if !ok {
		return nil, goerr.Wrap(ErrCustomerNotFound, "no such customer", goerr.V("customerID", customerID))
	}
	if len(c.Accounts) == 0 {
		return nil, goerr.Wrap(ErrCustomerNotFound, "customer has no accounts", goerr.V("customerID", customerID))
	}
	acct := c.Accounts[0]
	return &acct, nil
}

// Profile returns the customer's name and contact details
func (s *Store) Profile(customerID types.CustomerID) (string, *model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	if !ok {
		return "", nil, goerr.Wrap(ErrCustomerNotFound, "no such customer", goerr.V("customerID", customerID))
	}
	profile := c.Profile
	return c.Name, &profile, nil
}

// Transactions returns up to count recent transactions, newest first
func (s *Store) Transactions(customerID types.CustomerID, count int) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	if !ok {
		return nil, goerr.Wrap(ErrCustomerNotFound, "no such customer", goerr.V("customerID", customerID))
	}
	if count > len(c.Transactions) {
		count = len(c.Transactions)
	}
	return append([]model.Transaction(nil), c.Transactions[:count]...), nil
}

// Cards returns the customer's cards
func (s *Store) Cards(customerID types.CustomerID) ([]model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	if !ok {
		return nil, goerr.Wrap(ErrCustomerNotFound, "no such customer", goerr.V("customerID", customerID))
	}
	return append([]model.Card(nil), c.Cards...), nil
}

// CardOwner resolves a card ID to its owning customer
func (s *Store) CardOwner(cardID string) (types.CustomerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.cardOwners[cardID]
	if !ok {
		return "", goerr.Wrap(ErrCardNotFound, "no such card", goerr.V("cardID", cardID))
	}
	return owner, nil
}

// BlockCard marks a card blocked on the customer record. The update is
// applied atomically under the store lock.
func (s *Store) BlockCard(cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.cardOwners[cardID]
	if !ok {
		return goerr.Wrap(ErrCardNotFound, "no such card", goerr.V("cardID", cardID))
	}

	c := s.customers[owner]
	for i := range c.Cards {
		if c.Cards[i].ID == cardID {
			c.Cards[i].Status = "blocked"
			return nil
		}
	}
	return goerr.Wrap(ErrCardNotFound, "card not on customer record", goerr.V("cardID", cardID))
}

// Statement finds a statement by period (YYYY-MM). On a miss it returns
// the available periods so the agent can offer alternatives.
func (s *Store) Statement(customerID types.CustomerID, period string) (*model.Statement, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	if !ok {
		return nil, nil, goerr.Wrap(ErrCustomerNotFound, "no such customer", goerr.V("customerID", customerID))
	}

	periods := make([]string, 0, len(c.Statements))
	for _, st := range c.Statements {
		if st.Period == period {
			found := st
			return &found, nil, nil
		}
		periods = append(periods, st.Period)
	}
	return nil, periods, goerr.Wrap(ErrStatementNotFound, "no statement for period",
		goerr.V("customerID", customerID), goerr.V("period", period))
}

// UpdateAddress replaces the customer's profile address
func (s *Store) UpdateAddress(customerID types.CustomerID, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[customerID]
	if !ok {
		return "", goerr.Wrap(ErrCustomerNotFound, "no such customer", goerr.V("customerID", customerID))
	}
	c.Profile.Address = strings.TrimSpace(address)
	return c.Profile.Address, nil
}

// FileDispute records an ATM cash-not-dispensed incident
func (s *Store) FileDispute(customerID types.CustomerID, atmID string, amount float64, date string) (*model.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customerID]; !ok {
		return nil, goerr.Wrap(ErrCustomerNotFound, "no such customer", goerr.V("customerID", customerID))
	}

	s.disputeSeq++
	d := &model.Dispute{
		ID:         fmt.Sprintf("disp_%d_%d", time.Now().Unix(), s.disputeSeq),
		CustomerID: customerID,
		Type:       "cash_not_dispensed",
		ATMID:      atmID,
		Amount:     amount,
		Date:       date,
		Status:     "submitted",
	}
	s.disputes[d.ID] = d

	stored := *d
	return &stored, nil
}

// Dispute looks up a filed dispute by ID
func (s *Store) Dispute(id string) (*model.Dispute, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.disputes[id]
	if !ok {
		return nil, false
	}
	stored := *d
	return &stored, true
}
