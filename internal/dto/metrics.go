package dto

import "time"

// SystemMetrics is a lightweight snapshot of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio          float64   `json:"cache_hit_ratio"`
	CacheHits              uint64    `json:"cache_hits"`
	CacheMisses            uint64    `json:"cache_misses"`
	RequestsTotal          uint64    `json:"requests_total"`
	AverageRequestDuration float64   `json:"average_request_duration_ms"`
	StoreQueryCount        uint64    `json:"store_query_count"`
	AverageStoreQuery      float64   `json:"average_store_query_ms"`
	StoreConflicts         uint64    `json:"store_conflicts"`
	PointsRecorded         uint64    `json:"points_recorded"`
	Goroutines             int       `json:"goroutines"`
	GeneratedAt            time.Time `json:"generated_at"`
}
