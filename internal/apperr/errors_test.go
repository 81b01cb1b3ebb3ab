package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrecondition(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "not found", err: ErrNotFound, want: true},
		{name: "wrapped conflict", err: fmt.Errorf("card busy: %w", ErrConflict), want: true},
		{name: "already exists", err: ErrAlreadyExists, want: true},
		{name: "invalid reference", err: ErrInvalidReference, want: false},
		{name: "unrelated", err: errors.New("disk full"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPrecondition(tt.err))
		})
	}
}
