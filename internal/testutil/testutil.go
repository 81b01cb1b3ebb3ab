// Package testutil provides shared test fixtures for cards, services and
// temporary export databases.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/cardlinks/internal/linkservice"
	"github.com/starford/cardlinks/internal/models"
)

// Issuer used by fixtures that do not care about issuer mismatch.
const Issuer = "HDFC Bank"

// Card builds an active card.
func Card(id, number, issuer string) models.CreditCard {
	return models.CreditCard{ID: id, Number: number, Issuer: issuer, State: models.CardStateActive}
}

// Cards builds active cards "1".."n" with distinct numbers and one issuer.
func Cards(n int) []models.CreditCard {
	out := make([]models.CreditCard, n)
	for i := range out {
		id := string(rune('1' + i))
		out[i] = Card(id, id+id+id+id, Issuer)
	}
	return out
}

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Service creates a service with cards already registered.
func Service(t *testing.T, cards ...models.CreditCard) *linkservice.Service {
	t.Helper()
	svc := linkservice.New(Logger())
	for _, c := range cards {
		if err := svc.AddCard(context.Background(), c); err != nil {
			t.Fatalf("AddCard(%s): %v", c.ID, err)
		}
	}
	return svc
}

// Link builds an edge value for comparisons.
func Link(primary, linked, group string) models.CardLink {
	return models.CardLink{PrimaryCardID: primary, LinkedCardID: linked, GroupID: group, Reason: "random reason"}
}

// TempFile writes content into a file under a test temp dir and returns its path.
func TempFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
