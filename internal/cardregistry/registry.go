// Package cardregistry holds registered credit cards and enforces
// identifier and card-number uniqueness.
package cardregistry

import (
	"fmt"
	"sort"

	"github.com/starford/cardlinks/internal/apperr"
	"github.com/starford/cardlinks/internal/models"
)

var (
	ErrDuplicateCardID     = fmt.Errorf("card id: %w", apperr.ErrAlreadyExists)
	ErrDuplicateCardNumber = fmt.Errorf("card number: %w", apperr.ErrAlreadyExists)
)

// Registry is an in-memory card store. It is not safe for concurrent use.
type Registry struct {
	cards   map[string]models.CreditCard
	numbers map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		cards:   make(map[string]models.CreditCard),
		numbers: make(map[string]struct{}),
	}
}

// Add inserts card unless its ID or number is already registered.
func (r *Registry) Add(card models.CreditCard) error {
	if _, ok := r.cards[card.ID]; ok {
		return ErrDuplicateCardID
	}
	if _, ok := r.numbers[card.Number]; ok {
		return ErrDuplicateCardNumber
	}
	r.cards[card.ID] = card
	r.numbers[card.Number] = struct{}{}
	return nil
}

// Get returns the card registered under id.
func (r *Registry) Get(id string) (models.CreditCard, bool) {
	c, ok := r.cards[id]
	return c, ok
}

// All returns every registered card ordered by ID.
func (r *Registry) All() []models.CreditCard {
	out := make([]models.CreditCard, 0, len(r.cards))
	for _, c := range r.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered cards.
func (r *Registry) Len() int {
	return len(r.cards)
}
