package analysis

import "github.com/ZanzyTHEbar/pipeline-insight/internal/types"

// CycleBucket is the discretized sales-cycle-length category. It is a
// derived attribute: a total, disjoint function of cycle days covering the
// whole non-negative range.
type CycleBucket = types.CycleBucket

// Bucket maps a sales cycle length in days to its bucket. Each boundary is
// the inclusive lower bound of the higher bucket, so exactly 30 days is
// Medium and exactly 90 days is VeryLong.
func (c Config) Bucket(cycleDays int) CycleBucket {
	switch {
	case cycleDays < c.BucketBounds[0]:
		return types.BucketFast
	case cycleDays < c.BucketBounds[1]:
		return types.BucketMedium
	case cycleDays < c.BucketBounds[2]:
		return types.BucketLong
	default:
		return types.BucketVeryLong
	}
}
