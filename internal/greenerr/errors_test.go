package greenerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchSentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
		kind Kind
	}{
		{"input", Input("densify", "bad step %v", -1), ErrInput, KindInput},
		{"reconstruction", Reconstruction("reconstruct", "only %d points", 3), ErrReconstruction, KindReconstruction},
		{"resource", Resource("load", "read meta: %w", fs.ErrNotExist), ErrResource, KindResource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.want)
			assert.Equal(t, tt.kind, KindOf(tt.err))
			for _, other := range []error{ErrInput, ErrReconstruction, ErrResource} {
				if other != tt.want {
					assert.NotErrorIs(t, tt.err, other)
				}
			}
		})
	}
}

func TestResourceKeepsCause(t *testing.T) {
	t.Parallel()
	err := Resource("load", "open heightfield.bin: %w", fs.ErrNotExist)
	wrapped := fmt.Errorf("compute: %w", err)

	assert.ErrorIs(t, wrapped, fs.ErrNotExist)
	assert.ErrorIs(t, wrapped, ErrResource)
	assert.Equal(t, KindResource, KindOf(wrapped))
}

func TestErrorString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "reconstruct: reconstruction error: too few points",
		Reconstruction("reconstruct", "too few points").Error())
	assert.Equal(t, "input error: nope", (&Error{Kind: KindInput, Err: errors.New("nope")}).Error())
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
