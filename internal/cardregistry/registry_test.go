package cardregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/cardlinks/internal/apperr"
	"github.com/starford/cardlinks/internal/models"
)

func card(id, number, issuer string) models.CreditCard {
	return models.CreditCard{ID: id, Number: number, Issuer: issuer, State: models.CardStateActive}
}

func TestAdd_SingleCard(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(card("1", "1234", "HDFC Bank")))

	got, ok := r.Get("1")
	require.True(t, ok)
	assert.Equal(t, card("1", "1234", "HDFC Bank"), got)
	assert.Equal(t, 1, r.Len())
}

func TestAdd_TwoDistinctCards(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(card("1", "1234", "HDFC Bank")))
	require.NoError(t, r.Add(card("2", "2345", "Axis Bank")))
	assert.Equal(t, 2, r.Len())
}

func TestAdd_SameCardTwice(t *testing.T) {
	r := New()
	c := card("1", "1234", "HDFC Bank")
	require.NoError(t, r.Add(c))

	err := r.Add(c)
	assert.ErrorIs(t, err, ErrDuplicateCardID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestAdd_DuplicateID(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(card("1", "1234", "HDFC Bank")))

	err := r.Add(card("1", "2345", "HDFC Bank"))
	assert.ErrorIs(t, err, ErrDuplicateCardID)

	got, _ := r.Get("1")
	assert.Equal(t, "1234", got.Number, "original card must be kept")
}

func TestAdd_DuplicateNumber(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(card("1", "1234", "HDFC Bank")))

	err := r.Add(card("2", "1234", "Axis Bank"))
	assert.ErrorIs(t, err, ErrDuplicateCardNumber)

	_, ok := r.Get("2")
	assert.False(t, ok, "rejected card must not be registered")
}

func TestGet_Missing(t *testing.T) {
	r := New()
	_, ok := r.Get("nope")
	assert.False(t, ok)
}

func TestAll_SortedByID(t *testing.T) {
	r := New()
	for _, c := range []models.CreditCard{
		card("3", "3456", "HDFC Bank"),
		card("1", "1234", "HDFC Bank"),
		card("2", "2345", "HDFC Bank"),
	} {
		require.NoError(t, r.Add(c))
	}

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{all[0].ID, all[1].ID, all[2].ID})
}
