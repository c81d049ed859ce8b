package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Bind              string
	Port              uint16
	DBPath            string
	HeartbeatInterval time.Duration
}

// Load resolves configuration in the usual order: flags bound to v win,
// then PRIORITIES_* environment variables, then defaults. A .env file in the
// working directory is folded into the environment first.
func Load(v *viper.Viper) *Config {
	_ = godotenv.Load()

	v.SetEnvPrefix("PRIORITIES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("bind", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("db-path", "./priorities.db")
	v.SetDefault("heartbeat-interval", 30*time.Second)

	return &Config{
		Bind:              v.GetString("bind"),
		Port:              v.GetUint16("port"),
		DBPath:            v.GetString("db-path"),
		HeartbeatInterval: v.GetDuration("heartbeat-interval"),
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
