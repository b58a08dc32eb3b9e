package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickamy/gospy"
)

func TestRun(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		cfg  gospy.Config
	}{
		{name: "plain", cfg: gospy.Config{Reporter: gospy.NopReporter{}}},
		{name: "burrow deep with metrics", cfg: gospy.Config{Reporter: gospy.NopReporter{}, BurrowDeep: true, Metrics: gospy.NewMetrics("demo")}},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.NoError(t, run(tc.cfg))
		})
	}
}

func TestInventory_Remove(t *testing.T) {
	t.Parallel()

	inv := NewInventory("me")
	inv.Add("apple", 2)

	left, err := inv.Remove("apple", 3)
	assert.ErrorIs(t, err, errOutOfStock)
	assert.Equal(t, 2, left)

	left, err = inv.Remove("apple", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, left)
}
