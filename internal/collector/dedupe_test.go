package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slotscout/slotscout/internal/centre"
)

func named(names ...string) []centre.Centre {
	out := make([]centre.Centre, len(names))
	for i, n := range names {
		out[i] = centre.Centre{Name: n, Address: n + " road"}
	}
	return out
}

func TestBatchLooksDuplicate(t *testing.T) {
	t.Parallel()

	reference := newKeySet(named("a", "b", "c", "d", "e"))

	cases := []struct {
		name  string
		batch []centre.Centre
		want  bool
	}{
		{"three known in a row", named("a", "b", "c"), true},
		{"run interrupted by fresh item", named("a", "x", "b", "y"), false},
		{"run resumes after interruption", named("a", "b", "x", "c", "d", "e"), true},
		{"two known then fresh repeated", named("a", "b", "x", "c", "d", "y"), false},
		{"all fresh", named("x", "y", "z"), false},
		{"short batch of known items", named("a", "b"), false},
		{"empty batch", nil, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, batchLooksDuplicate(tc.batch, reference))
		})
	}
}

func TestBatchLooksDuplicateEmptyReference(t *testing.T) {
	t.Parallel()

	assert.False(t, batchLooksDuplicate(named("a", "b", "c"), newKeySet(nil)))
}

func TestKeySetNormalizesIdentity(t *testing.T) {
	t.Parallel()

	s := newKeySet([]centre.Centre{{Name: "Lee On The Solent", Address: "Portsmouth Rd"}})
	assert.True(t, s.contains(centre.Centre{Name: "lee-on-the-solent", Address: "PORTSMOUTH RD"}))
	assert.False(t, s.contains(centre.Centre{Name: "Fareham", Address: "Portsmouth Rd"}))
}
