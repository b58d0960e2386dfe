package chance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeighted(t *testing.T) {
	t.Run("rejects empty and non-positive weights", func(t *testing.T) {
		src := New(1)
		_, err := Weighted(src, map[string]float64{})
		assert.ErrorIs(t, err, ErrNoWeight)

		_, err = Weighted(src, map[string]float64{"a": 0, "b": -3})
		assert.ErrorIs(t, err, ErrNoWeight)
	})

	t.Run("never picks zero weight keys", func(t *testing.T) {
		src := New(7)
		for i := 0; i < 500; i++ {
			k, err := Weighted(src, map[string]float64{"never": 0, "always": 2})
			require.NoError(t, err)
			assert.Equal(t, "always", k)
		}
	})

	t.Run("follows the weights", func(t *testing.T) {
		src := New(42)
		counts := map[time.Weekday]int{}
		weights := map[time.Weekday]float64{time.Tuesday: 1, time.Thursday: 3}
		for i := 0; i < 4000; i++ {
			k, err := Weighted(src, weights)
			require.NoError(t, err)
			counts[k]++
		}
		share := float64(counts[time.Thursday]) / 4000
		assert.InDelta(t, 0.75, share, 0.05)
	})

	t.Run("same seed same sequence", func(t *testing.T) {
		a, b := New(99), New(99)
		weights := map[int]float64{1: 1, 2: 1, 3: 1, 4: 1}
		for i := 0; i < 50; i++ {
			ka, _ := Weighted(a, weights)
			kb, _ := Weighted(b, weights)
			require.Equal(t, ka, kb)
		}
	})
}

func TestShuffle(t *testing.T) {
	src := New(3)
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out := Shuffle(src, in)

	assert.ElementsMatch(t, in, out)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, in, "input must not be modified")

	// every position should see every value eventually
	seen := map[int]map[int]bool{}
	for i := 0; i < 2000; i++ {
		for pos, v := range Shuffle(src, in) {
			if seen[pos] == nil {
				seen[pos] = map[int]bool{}
			}
			seen[pos][v] = true
		}
	}
	for pos := range in {
		assert.Len(t, seen[pos], len(in), "position %d", pos)
	}
}

func TestBounds(t *testing.T) {
	src := New(5)
	for i := 0; i < 1000; i++ {
		v := src.IntBetween(3, 6)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 6)

		f := src.FloatBetween(0.5, 0.7)
		assert.GreaterOrEqual(t, f, 0.5)
		assert.Less(t, f, 0.7)
	}
	assert.Equal(t, 4, src.IntBetween(4, 4))
	assert.False(t, src.Roll(0))
	assert.True(t, src.Roll(1))
}

func TestFork(t *testing.T) {
	draw := func(src *Source) []int {
		out := make([]int, 8)
		for i := range out {
			out[i] = src.IntBetween(0, 1000)
		}
		return out
	}

	a, b := New(9), New(9)
	fa1, fa2 := a.Fork(), a.Fork()
	fb1, fb2 := b.Fork(), b.Fork()

	// the second fork drawn first still matches its twin
	assert.Equal(t, draw(fa2), draw(fb2))
	assert.Equal(t, draw(fa1), draw(fb1))
	assert.NotEqual(t, draw(New(9).Fork()), draw(New(10).Fork()))
	assert.Equal(t, draw(a), draw(b), "parents stay in step")
}
