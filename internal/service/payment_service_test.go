package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/service"
)

func TestPayments_MpesaAccounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	acct, err := e.payments.AddMpesa(ctx, e.client.ID, "0712345678")
	require.NoError(t, err)
	assert.Equal(t, "254712345678", acct.PhoneNumber)

	intl, err := e.payments.AddMpesa(ctx, e.client.ID, "+254722000111")
	require.NoError(t, err)
	assert.Equal(t, "254722000111", intl.PhoneNumber)

	_, err = e.payments.AddMpesa(ctx, e.client.ID, "12345")
	requireKind(t, err, apperr.KindValidation)

	list, err := e.payments.MpesaAccounts(ctx, e.client.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	err = e.payments.DeleteMpesa(ctx, e.freelancer.ID, acct.ID)
	requireKind(t, err, apperr.KindNotFound)
	require.NoError(t, e.payments.DeleteMpesa(ctx, e.client.ID, acct.ID))
}

func TestPayments_CardValidationAndWallet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.payments.AddCard(ctx, e.client.ID, service.AddCardRequest{CardNumber: "4111", ExpirationDate: "13/30"})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "cardholder_name")
	assert.Contains(t, ae.Fields, "card_number")
	assert.Contains(t, ae.Fields, "expiration_date")

	_, err = e.payments.Wallet(ctx, e.client.ID)
	requireKind(t, err, apperr.KindNotFound)

	e.store.SetWallet(entity.Wallet{UserID: e.client.ID, Balance: "120.00"})
	w, err := e.payments.Wallet(ctx, e.client.ID)
	require.NoError(t, err)
	assert.Equal(t, "120.00", w.Balance)
}

func TestPayments_PayPalAccounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, bad := range []string{"", "   ", "not-an-email", "a@"} {
		_, err := e.payments.AddPayPal(ctx, e.client.ID, service.AddPayPalRequest{Email: bad})
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae, bad)
		assert.Contains(t, ae.Fields, "email", bad)
	}

	acct, err := e.payments.AddPayPal(ctx, e.client.ID, service.AddPayPalRequest{Email: " pay@example.com "})
	require.NoError(t, err)
	assert.Equal(t, "pay@example.com", acct.Email)

	list, err := e.payments.PayPalAccounts(ctx, e.client.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	none, err := e.payments.PayPalAccounts(ctx, e.freelancer.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	requireKind(t, e.payments.DeletePayPal(ctx, e.freelancer.ID, acct.ID), apperr.KindNotFound)
	require.NoError(t, e.payments.DeletePayPal(ctx, e.client.ID, acct.ID))
	requireKind(t, e.payments.DeletePayPal(ctx, e.client.ID, acct.ID), apperr.KindNotFound)
}

func TestListing_PagePrices(t *testing.T) {
	e := newEnv(t)

	prices, err := e.listing.PagePrices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, prices)

	e.store.AddPagePrice(5)
	e.store.AddPagePrice(8)
	prices, err = e.listing.PagePrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.PagePrice{{Amount: 5}, {Amount: 8}}, prices)
}
