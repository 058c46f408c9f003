package domain

// PoolStats represents a snapshot of the execution worker pool
type PoolStats struct {
	Workers       int `json:"workers"`
	Busy          int `json:"busy"`
	QueueDepth    int `json:"queue_depth"`
	QueueCapacity int `json:"queue_capacity"`
}
