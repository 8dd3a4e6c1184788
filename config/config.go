package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Session  Session
	Monitor  Monitor
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Session holds the tunables of the registration window.
type Session struct {
	// LateEntryGraceSeconds is how long after session start a
	// registration is still accepted when allow_late_entry is off.
	LateEntryGraceSeconds int
}

// Monitor holds the live-dashboard heuristics.
type Monitor struct {
	// AtRiskThreshold is the gap between time progress and answer
	// progress (both 0..1) beyond which a participant is flagged.
	AtRiskThreshold float64
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LATE_ENTRY_GRACE_SECONDS", 600)
	viper.SetDefault("AT_RISK_THRESHOLD", 0.20)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Session.LateEntryGraceSeconds = viper.GetInt("LATE_ENTRY_GRACE_SECONDS")
	config.Monitor.AtRiskThreshold = viper.GetFloat64("AT_RISK_THRESHOLD")

	log.Info().Str("port", config.Server.Port).Msg("Config loaded")
	return &config, nil
}
