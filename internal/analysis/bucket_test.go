package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

func TestBucket(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		days     int
		expected types.CycleBucket
	}{
		{name: "zero days is fast", days: 0, expected: types.BucketFast},
		{name: "mid fast range", days: 15, expected: types.BucketFast},
		{name: "last fast day", days: 29, expected: types.BucketFast},
		{name: "boundary 30 belongs to medium", days: 30, expected: types.BucketMedium},
		{name: "mid medium range", days: 45, expected: types.BucketMedium},
		{name: "last medium day", days: 59, expected: types.BucketMedium},
		{name: "boundary 60 belongs to long", days: 60, expected: types.BucketLong},
		{name: "last long day", days: 89, expected: types.BucketLong},
		{name: "boundary 90 belongs to very long", days: 90, expected: types.BucketVeryLong},
		{name: "far tail", days: 400, expected: types.BucketVeryLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.Bucket(tt.days))
		})
	}
}

func TestBucketTotalAndDisjoint(t *testing.T) {
	cfg := DefaultConfig()

	// Every non-negative cycle length maps to exactly one bucket.
	for days := 0; days <= 365; days++ {
		b := cfg.Bucket(days)
		assert.Contains(t, types.CycleBuckets, b, "day %d mapped outside the bucket set", days)
	}

	// Bucket assignment is monotone in days: once we leave a bucket we
	// never come back to it.
	seen := map[types.CycleBucket]bool{}
	var last types.CycleBucket
	for days := 0; days <= 365; days++ {
		b := cfg.Bucket(days)
		if b != last {
			assert.False(t, seen[b], "bucket %s reappeared at day %d", b, days)
			seen[b] = true
			last = b
		}
	}
}
