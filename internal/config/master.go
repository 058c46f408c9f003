package config

import "os"

type AppConfig struct {
	DebugMode      bool
	ServerConfig   *ServerConfig
	SandboxConfig  *SandboxConfig
	ExecSvcCfg     *ExecSvcCfg
	SweeperCfg     *SweeperCfg
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		ServerConfig:   NewServerConfig(),
		SandboxConfig:  NewSandboxConfig(),
		ExecSvcCfg:     NewExecSvcCfg(),
		SweeperCfg:     NewSweeperCfg(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
	}
}
