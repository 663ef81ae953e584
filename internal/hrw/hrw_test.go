package hrw

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBest_stable(t *testing.T) {
	require.Equal(t, -1, Best("k", 0, ""))
	require.Equal(t, 0, Best("k", 1, ""))

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("actor-%d", i)
		require.Equal(t, Best(key, 8, "s"), Best(key, 8, "s"))
	}
}

func TestBest_spread(t *testing.T) {
	hits := make([]int, 4)
	for i := 0; i < 1000; i++ {
		hits[Best(fmt.Sprintf("actor-%d", i), 4, "")]++
	}
	for i, h := range hits {
		require.Greater(t, h, 150, "bucket %d underused", i)
	}
}

func TestBest_minimal_movement(t *testing.T) {
	moved := 0
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("actor-%d", i)
		before, after := Best(key, 4, ""), Best(key, 5, "")
		if before != after {
			// keys only ever move to the new bucket
			require.Equal(t, 4, after)
			moved++
		}
	}
	require.Less(t, moved, 400)
}
