package config

import "time"

type ExecSvcCfg struct {
	Workers   int
	QueueSize int
}

func NewExecSvcCfg() *ExecSvcCfg {
	return &ExecSvcCfg{
		Workers:   getIntEnv("EXEC_WORKERS", 4),
		QueueSize: getIntEnv("EXEC_QUEUE_SIZE", 64),
	}
}

type SweeperCfg struct {
	SweepInterval time.Duration
	// SweepMaxAge is how old an orphaned workspace must be before the
	// sweeper removes it. Normal runs remove their workspace inline;
	// the sweeper only catches crash leftovers.
	SweepMaxAge time.Duration
}

func NewSweeperCfg() *SweeperCfg {
	return &SweeperCfg{
		SweepInterval: time.Duration(getIntEnv("SWEEP_INTERVAL_SEC", 300)) * time.Second,
		SweepMaxAge:   time.Duration(getIntEnv("SWEEP_MAX_AGE_SEC", 900)) * time.Second,
	}
}
