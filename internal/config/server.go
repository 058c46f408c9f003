package config

type ServerConfig struct {
	HTTPPort int
	// TCPAddr enables the TCP surface when non-empty.
	TCPAddr        string
	ServiceName    string
	RateLimitRPS   int
	RateLimitBurst int
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		HTTPPort:       getIntEnv("HTTP_PORT", 8080),
		TCPAddr:        getEnv("TCP_ADDR", ""),
		ServiceName:    getEnv("SERVICE_NAME", "gradebox"),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),
	}
}
