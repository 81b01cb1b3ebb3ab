package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/cardlinks/internal/testutil"
)

const validDoc = `
name: basic
cards:
  - {id: "1", number: "1234", issuer: HDFC Bank}
  - {id: "2", number: "2345", issuer: HDFC Bank}
steps:
  - {op: link, primary: "1", linked: "2", reason: family, expect: ok}
  - op: chain
    group: "1"
    want: ["1->2"]
`

func TestParse_Valid(t *testing.T) {
	s, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	assert.Equal(t, "basic", s.Name)
	assert.Len(t, s.Cards, 2)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, OpLink, s.Steps[0].Op)
	assert.Equal(t, "family", s.Steps[0].Reason)
	assert.Equal(t, []string{"1->2"}, s.Steps[1].Want)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing name", doc: "steps:\n  - {op: swap, group: a}\n"},
		{name: "no steps", doc: "name: x\n"},
		{name: "unknown op", doc: "name: x\nsteps:\n  - {op: merge, group: a}\n"},
		{name: "link without linked", doc: "name: x\nsteps:\n  - {op: link, primary: a}\n"},
		{name: "swap without group", doc: "name: x\nsteps:\n  - {op: swap}\n"},
		{name: "add without card", doc: "name: x\nsteps:\n  - {op: add}\n"},
		{name: "card without number", doc: "name: x\nsteps:\n  - {op: add, card: {id: a, issuer: b}}\n"},
		{name: "bad expect", doc: "name: x\nsteps:\n  - {op: swap, group: a, expect: maybe}\n"},
		{name: "want on non chain", doc: "name: x\nsteps:\n  - {op: swap, group: a, want: [a->b]}\n"},
		{name: "malformed want", doc: "name: x\nsteps:\n  - {op: chain, group: a, want: [ab]}\n"},
		{name: "unknown key", doc: "name: x\nsteps:\n  - {op: swap, group: a, colour: red}\n"},
		{name: "cards entry without issuer", doc: "name: x\ncards:\n  - {id: a, number: \"1\"}\nsteps:\n  - {op: swap, group: a}\n"},
		{name: "not yaml", doc: "name: [x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := testutil.TempFile(t, "basic.yaml", validDoc)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path)
	assert.Len(t, s.Checksum, 64)

	same, err := Load(testutil.TempFile(t, "copy.yaml", validDoc))
	require.NoError(t, err)
	assert.Equal(t, s.Checksum, same.Checksum)

	changed, err := Load(testutil.TempFile(t, "changed.yaml", validDoc+"\n# edited\n"))
	require.NoError(t, err)
	assert.NotEqual(t, s.Checksum, changed.Checksum)

	_, err = Load(path + ".missing")
	assert.Error(t, err)
}

func TestDemo(t *testing.T) {
	s := Demo()
	assert.Equal(t, "demo", s.Name)
	assert.Len(t, s.Cards, 4)
	assert.NotEmpty(t, s.Steps)
}

func TestParseEdge(t *testing.T) {
	p, l, err := ParseEdge("card-1 -> card-2")
	require.NoError(t, err)
	assert.Equal(t, "card-1", p)
	assert.Equal(t, "card-2", l)

	_, _, err = ParseEdge("card-1")
	assert.Error(t, err)
}
