// Package linkservice implements card registration and the chain operations
// link, delink, swap and chain retrieval on top of the card and link registries.
//
// A Service is meant for a single caller. Hosts that share one across
// goroutines must serialize access themselves.
package linkservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/cardlinks/internal/apperr"
	"github.com/starford/cardlinks/internal/cardregistry"
	"github.com/starford/cardlinks/internal/linkregistry"
	"github.com/starford/cardlinks/internal/models"
)

var (
	ErrCardOccupied   = fmt.Errorf("card already linked: %w", apperr.ErrConflict)
	ErrNotChainHead   = fmt.Errorf("linked card is not a chain head: %w", apperr.ErrConflict)
	ErrIssuerMismatch = fmt.Errorf("issuers differ: %w", apperr.ErrConflict)
	ErrSelfLink       = fmt.Errorf("card cannot link to itself: %w", apperr.ErrConflict)
	ErrChainNotFound  = linkregistry.ErrChainNotFound
)

// UnknownCardError reports a card id that is not in the card registry.
type UnknownCardError struct {
	ID string
}

func (e *UnknownCardError) Error() string {
	return fmt.Sprintf("unknown card %q", e.ID)
}

// Is makes UnknownCardError match apperr.ErrInvalidReference.
func (e *UnknownCardError) Is(target error) bool {
	return target == apperr.ErrInvalidReference
}

// Cards is the card store the service reads and registers into.
type Cards interface {
	Add(card models.CreditCard) error
	Get(id string) (models.CreditCard, bool)
	All() []models.CreditCard
}

// Snapshot is a read-only copy of the service state.
type Snapshot struct {
	Cards    []models.CreditCard          `json:"cards" yaml:"cards"`
	Chains   map[string][]models.CardLink `json:"chains" yaml:"chains"`
	Occupied []string                     `json:"occupied" yaml:"occupied"`
}

// Service coordinates the card registry and the link registry.
type Service struct {
	cards  Cards
	links  *linkregistry.Registry
	logger *slog.Logger
}

// NewService creates a service over the given registries. A nil logger
// falls back to slog.Default().
func NewService(cards Cards, links *linkregistry.Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cards: cards, links: links, logger: logger}
}

// New creates a service over empty in-memory registries.
func New(logger *slog.Logger) *Service {
	return NewService(cardregistry.New(), linkregistry.New(), logger)
}

// AddCard registers card. It fails when the id or number is already taken.
func (s *Service) AddCard(ctx context.Context, card models.CreditCard) error {
	if err := s.cards.Add(card); err != nil {
		s.reject(ctx, "add card", err, slog.String("card_id", card.ID))
		return err
	}
	s.logger.DebugContext(ctx, "card added",
		slog.String("card_id", card.ID),
		slog.String("issuer", card.Issuer))
	return nil
}

// Link creates the edge primaryID → linkedID and makes primaryID the head of
// the resulting chain. When linkedID already heads a chain the new edge is
// stacked on top of it.
func (s *Service) Link(ctx context.Context, primaryID, linkedID, reason string) error {
	if err := s.link(primaryID, linkedID, reason); err != nil {
		s.reject(ctx, "link", err,
			slog.String("primary_card_id", primaryID),
			slog.String("linked_card_id", linkedID))
		return err
	}
	s.logger.DebugContext(ctx, "cards linked",
		slog.String("primary_card_id", primaryID),
		slog.String("linked_card_id", linkedID),
		slog.Int("depth", s.links.Depth(primaryID)))
	return nil
}

func (s *Service) link(primaryID, linkedID, reason string) error {
	primary, ok := s.cards.Get(primaryID)
	if !ok {
		return &UnknownCardError{ID: primaryID}
	}
	linked, ok := s.cards.Get(linkedID)
	if !ok {
		return &UnknownCardError{ID: linkedID}
	}
	if primaryID == linkedID {
		return ErrSelfLink
	}
	if s.links.Occupied(primaryID) {
		return ErrCardOccupied
	}
	if s.links.Occupied(linkedID) && !s.links.IsHead(linkedID) {
		return ErrNotChainHead
	}
	if primary.Issuer != linked.Issuer {
		return ErrIssuerMismatch
	}
	// A released card can still head a chain; starting a second one under
	// the same key would drop the first.
	if s.links.IsHead(primaryID) {
		return ErrCardOccupied
	}

	e := linkregistry.Edge{Primary: primaryID, Linked: linkedID, Reason: reason}
	var err error
	if s.links.IsHead(linkedID) {
		err = s.links.Extend(e)
	} else {
		err = s.links.Start(e)
	}
	if err != nil {
		return err
	}
	s.links.Occupy(primaryID, linkedID)
	return nil
}

// Delink removes the head edge of the chain under groupID. Only the two cards
// of the removed edge are released from the occupancy set.
func (s *Service) Delink(ctx context.Context, groupID string) error {
	top, err := s.links.Trim(groupID)
	if err != nil {
		s.reject(ctx, "delink", err, slog.String("group_id", groupID))
		return err
	}
	s.links.Release(top.Primary, top.Linked)
	s.logger.DebugContext(ctx, "head link removed",
		slog.String("group_id", groupID),
		slog.String("primary_card_id", top.Primary),
		slog.String("linked_card_id", top.Linked))
	return nil
}

// Swap exchanges the two cards nearest the head of the chain under groupID.
// The old head's linked card becomes the new head.
func (s *Service) Swap(ctx context.Context, groupID string) error {
	newHead, err := s.swap(groupID)
	if err != nil {
		s.reject(ctx, "swap", err, slog.String("group_id", groupID))
		return err
	}
	s.logger.DebugContext(ctx, "head swapped",
		slog.String("group_id", groupID),
		slog.String("new_group_id", newHead))
	return nil
}

func (s *Service) swap(groupID string) (string, error) {
	top, ok := s.links.At(groupID, 0)
	if !ok {
		return "", ErrChainNotFound
	}
	second, hasSecond := s.links.At(groupID, 1)

	newHead := top.Linked
	flipped := linkregistry.Edge{Primary: top.Linked, Linked: top.Primary, Reason: top.Reason}
	if err := s.links.Replace(groupID, 0, flipped); err != nil {
		return "", err
	}
	if hasSecond {
		lowered := linkregistry.Edge{Primary: top.Primary, Linked: second.Linked, Reason: second.Reason}
		if err := s.links.Replace(newHead, 1, lowered); err != nil {
			return "", err
		}
	}
	return newHead, nil
}

// Chain returns the chain under groupID ordered head to tail. It returns an
// empty slice when groupID does not head a chain.
func (s *Service) Chain(_ context.Context, groupID string) []models.CardLink {
	return s.links.Edges(groupID)
}

// Snapshot copies the current cards, chains and occupancy set.
func (s *Service) Snapshot(_ context.Context) Snapshot {
	heads := s.links.Heads()
	chains := make(map[string][]models.CardLink, len(heads))
	for _, h := range heads {
		chains[h] = s.links.Edges(h)
	}
	return Snapshot{
		Cards:    s.cards.All(),
		Chains:   chains,
		Occupied: s.links.OccupiedIDs(),
	}
}

func (s *Service) reject(ctx context.Context, op string, err error, attrs ...any) {
	level := slog.LevelDebug
	var unknown *UnknownCardError
	if errors.As(err, &unknown) {
		level = slog.LevelWarn
	}
	attrs = append(attrs, slog.String("op", op), slog.String("error", err.Error()))
	s.logger.Log(ctx, level, "operation rejected", attrs...)
}
