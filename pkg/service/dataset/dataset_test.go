package dataset_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/abcbank/voxteller/pkg/service/dataset"
)

func TestResolveIgnoresCaseAndSeparators(t *testing.T) {
	store := dataset.NewSeeded()

	for _, input := range []string{"user_123", "USER_123", "user 123", "user-123", "user123", "User.123"} {
		id, ok := store.Resolve(input)
		gt.True(t, ok)
		gt.Value(t, id.String()).Equal("user_123")
	}

	_, ok := store.Resolve("user_999")
	gt.False(t, ok)
}

func TestVerifyPIN(t *testing.T) {
	store := dataset.NewSeeded()

	gt.True(t, store.VerifyPIN("user_123", "1234"))
	gt.False(t, store.VerifyPIN("user_123", "0000"))
	gt.False(t, store.VerifyPIN("user_999", "1234"))
}

func TestBalanceReturnsPrimaryAccount(t *testing.T) {
	store := dataset.NewSeeded()

	acct, err := store.Balance("user_123")
	gt.NoError(t, err).Required()
	gt.Value(t, acct.ID).Equal("acc_123")
	gt.Value(t, acct.Available).Equal(5000.00)

	_, err = store.Balance("user_999")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, dataset.ErrCustomerNotFound))
}

func TestProfile(t *testing.T) {
	store := dataset.NewSeeded()

	name, profile, err := store.Profile("user_123")
	gt.NoError(t, err).Required()
	gt.Value(t, name).Equal("John Doe")
	gt.Value(t, profile.Email).Equal("john.doe@example.com")
	gt.Value(t, profile.Phone).Equal("+1-202-555-0100")
	gt.String(t, profile.Address).Contains("12 Main St")

	_, _, err = store.Profile("user_999")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, dataset.ErrCustomerNotFound))
}

func TestTransactionsClampsCount(t *testing.T) {
	store := dataset.NewSeeded()

	txs, err := store.Transactions("user_123", 2)
	gt.NoError(t, err).Required()
	gt.Array(t, txs).Length(2)
	gt.Value(t, txs[0].ID).Equal("tx_1")

	// Asking for more than exist returns everything
	txs, err = store.Transactions("user_123", 20)
	gt.NoError(t, err).Required()
	gt.Array(t, txs).Length(3)
}

func TestBlockCard(t *testing.T) {
	store := dataset.NewSeeded()

	owner, err := store.CardOwner("card_123")
	gt.NoError(t, err).Required()
	gt.Value(t, owner.String()).Equal("user_123")

	gt.NoError(t, store.BlockCard("card_123")).Required()

	cards, err := store.Cards("user_123")
	gt.NoError(t, err).Required()
	gt.Array(t, cards).Length(1)
	gt.Value(t, cards[0].Status).Equal("blocked")

	err = store.BlockCard("card_999")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, dataset.ErrCardNotFound))
}

func TestStatementMissReturnsAvailablePeriods(t *testing.T) {
	store := dataset.NewSeeded()

	st, _, err := store.Statement("user_123", "2025-12")
	gt.NoError(t, err).Required()
	gt.Value(t, st.ID).Equal("st_202512")

	_, periods, err := store.Statement("user_123", "2024-01")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, dataset.ErrStatementNotFound))
	gt.Array(t, periods).Length(2)
	gt.Value(t, periods[0]).Equal("2025-12")
}

func TestUpdateAddressTrims(t *testing.T) {
	store := dataset.NewSeeded()

	addr, err := store.UpdateAddress("user_123", "  99 Elm St, Portland, OR 97201  ")
	gt.NoError(t, err).Required()
	gt.Value(t, addr).Equal("99 Elm St, Portland, OR 97201")
}

func TestFileDispute(t *testing.T) {
	store := dataset.NewSeeded()

	d, err := store.FileDispute("user_123", "atm_42", 200, "2026-01-15")
	gt.NoError(t, err).Required()
	gt.Value(t, d.Status).Equal("submitted")
	gt.Value(t, d.Type).Equal("cash_not_dispensed")
	gt.String(t, d.ID).Contains("disp_")

	stored, ok := store.Dispute(d.ID)
	gt.True(t, ok)
	gt.Value(t, stored.Amount).Equal(200.0)

	_, err = store.FileDispute("user_999", "atm_42", 200, "2026-01-15")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, dataset.ErrCustomerNotFound))
}
