// Package config loads conf/config.ini and the secrets kept in the
// environment (.env is read when present).
package config

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

type Config struct {
	MaxIterations int
	DisplayRows   int

	Addr      string
	TLS       bool
	CertFile  string
	KeyFile   string
	RateLimit float64
	RateBurst int

	LogLevel string

	TokenKey    string
	DatabaseURL string
}

// Load reads path. A missing file leaves every key at its default.
func Load(path string) (Config, error) {
	file, err := ini.LooseLoad(path)
	if err != nil {
		return Config{}, err
	}
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file")
	}
	return fromFile(file), nil
}

// Parse reads configuration from ini source text.
func Parse(src []byte) (Config, error) {
	file, err := ini.Load(src)
	if err != nil {
		return Config{}, err
	}
	return fromFile(file), nil
}

func fromFile(file *ini.File) Config {
	engine := file.Section("engine")
	server := file.Section("server")
	return Config{
		MaxIterations: engine.Key("MaxIterations").MustInt(0),
		DisplayRows:   engine.Key("DisplayRows").MustInt(200),

		Addr:      server.Key("Addr").MustString(":443"),
		TLS:       server.Key("TLS").MustBool(true),
		CertFile:  server.Key("CertFile").MustString("server.crt"),
		KeyFile:   server.Key("KeyFile").MustString("server.key"),
		RateLimit: server.Key("RateLimit").MustFloat64(1),
		RateBurst: server.Key("RateBurst").MustInt(3),

		LogLevel: file.Section("log").Key("Level").MustString("info"),

		TokenKey:    os.Getenv("TOKEN_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

// SetupLogging applies the configured level to logrus.
func (c Config) SetupLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
