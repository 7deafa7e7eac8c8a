package main

import (
	"fmt"
	"time"
	"unicode/utf8"
)

type Config struct {
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath   string        `env:"BLUGE_FILEPATH,required=true"`
	JWTSecret       string        `env:"JWT_SECRET,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=8080"`
	DebugPort       int           `env:"DEBUG_PORT,default=8081"`
	BufferSize      int           `env:"BUFFER_SIZE,default=256"`
	CharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// characterRune narrows the env string to the single rune the moderator
// replaces censored characters with.
func characterRune(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
