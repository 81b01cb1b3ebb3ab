// Package models defines the domain types for cardlinks.
package models

// Card states. The chain logic never inspects them.
const (
	CardStateActive   = "ACTIVE"
	CardStateInactive = "INACTIVE"
	CardStateBlocked  = "BLOCKED"
)

// CreditCard is a registered card. It is never modified after registration.
type CreditCard struct {
	ID     string `json:"id" yaml:"id"`
	Number string `json:"number" yaml:"number"`
	Issuer string `json:"issuer" yaml:"issuer"`
	State  string `json:"state,omitempty" yaml:"state,omitempty"`
}

// CardLink is one edge of a chain: PrimaryCardID sits immediately above
// LinkedCardID. GroupID is the chain's head at the time the edge was read.
type CardLink struct {
	PrimaryCardID string `json:"primary_card_id" yaml:"primary"`
	LinkedCardID  string `json:"linked_card_id" yaml:"linked"`
	GroupID       string `json:"group_id" yaml:"group"`
	Reason        string `json:"reason" yaml:"reason"`
}
