// Package scenario loads YAML scenario files, runs them against a fresh
// link service and reports each step's outcome.
package scenario

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/cardlinks/internal/models"
)

// Step operations.
const (
	OpAdd    = "add"
	OpLink   = "link"
	OpDelink = "delink"
	OpSwap   = "swap"
	OpChain  = "chain"
)

// Step expectations.
const (
	ExpectOK   = "ok"
	ExpectFail = "fail"
)

var edgeRe = regexp.MustCompile(`^\s*(\S+?)\s*->\s*(\S+)\s*$`)

//go:embed demo.yaml
var demoYAML []byte

// Scenario is a named list of cards to register and steps to run.
// Path and Checksum are set by Load.
type Scenario struct {
	Name     string              `yaml:"name"`
	Path     string              `yaml:"-"`
	Checksum string              `yaml:"-"`
	Cards    []models.CreditCard `yaml:"cards"`
	Steps    []Step              `yaml:"steps"`
}

// Step is one operation against the link service. Want lists the expected
// chain of a chain step head first, as "primary->linked" pairs.
type Step struct {
	Op      string             `yaml:"op"`
	Card    *models.CreditCard `yaml:"card,omitempty"`
	Primary string             `yaml:"primary,omitempty"`
	Linked  string             `yaml:"linked,omitempty"`
	Reason  string             `yaml:"reason,omitempty"`
	Group   string             `yaml:"group,omitempty"`
	Expect  string             `yaml:"expect,omitempty"`
	Want    []string           `yaml:"want,omitempty"`
}

// Validate validates the scenario and all of its steps.
func (s *Scenario) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Cards, validation.Each(validation.By(validateCard))),
		validation.Field(&s.Steps, validation.Required),
	)
}

// Validate validates a single step.
func (s Step) Validate() error {
	needsGroup := s.Op == OpDelink || s.Op == OpSwap || s.Op == OpChain
	return validation.ValidateStruct(&s,
		validation.Field(&s.Op, validation.Required, validation.In(OpAdd, OpLink, OpDelink, OpSwap, OpChain)),
		validation.Field(&s.Card, validation.When(s.Op == OpAdd, validation.Required, validation.By(validateCard))),
		validation.Field(&s.Primary, validation.When(s.Op == OpLink, validation.Required)),
		validation.Field(&s.Linked, validation.When(s.Op == OpLink, validation.Required)),
		validation.Field(&s.Group, validation.When(needsGroup, validation.Required)),
		validation.Field(&s.Expect, validation.In(ExpectOK, ExpectFail)),
		validation.Field(&s.Want,
			validation.When(s.Op != OpChain, validation.Nil),
			validation.Each(validation.Match(edgeRe))),
	)
}

func validateCard(value any) error {
	var c models.CreditCard
	switch v := value.(type) {
	case models.CreditCard:
		c = v
	case *models.CreditCard:
		if v == nil {
			return nil
		}
		c = *v
	default:
		return fmt.Errorf("unexpected card type %T", value)
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Number, validation.Required),
		validation.Field(&c.Issuer, validation.Required),
	)
}

// Parse decodes and validates a scenario document. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return &s, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	s.Checksum = checksum(data)
	return s, nil
}

// checksum returns the hex-encoded SHA-256 digest of data.
func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Demo returns the built-in walkthrough: four cards chained 1→2→3→4, then
// the top two swapped.
func Demo() *Scenario {
	s, err := Parse(demoYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded demo scenario: %v", err))
	}
	return s
}

// ParseEdge splits a "primary->linked" pair.
func ParseEdge(s string) (primary, linked string, err error) {
	m := edgeRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", errors.New("edge must look like primary->linked")
	}
	return m[1], m[2], nil
}
