package nostrchat

import "sync/atomic"

// Profile cache metrics
var (
	profileIngestsTotal  atomic.Int64
	profileDiscardsTotal atomic.Int64
	cacheHitsTotal       atomic.Int64
	cacheMissesTotal     atomic.Int64
)

// Directory fetch metrics
var (
	directoryFetchesTotal  atomic.Int64
	directoryFailuresTotal atomic.Int64
)

// Metrics is a point-in-time view of the core's counters
type Metrics struct {
	ProfileIngests    int64
	ProfileDiscards   int64
	CacheHits         int64
	CacheMisses       int64
	DirectoryFetches  int64
	DirectoryFailures int64
}

// MetricsSnapshot returns current counter values
func MetricsSnapshot() Metrics {
	return Metrics{
		ProfileIngests:    profileIngestsTotal.Load(),
		ProfileDiscards:   profileDiscardsTotal.Load(),
		CacheHits:         cacheHitsTotal.Load(),
		CacheMisses:       cacheMissesTotal.Load(),
		DirectoryFetches:  directoryFetchesTotal.Load(),
		DirectoryFailures: directoryFailuresTotal.Load(),
	}
}
