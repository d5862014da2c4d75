package main

import (
	"fmt"
	"time"
)

type Config struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=8080"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	OTPDuration       time.Duration `env:"OTP_DURATION,default=10m"`

	ConnectionBufferSize int    `env:"CONNECTION_BUFFER_SIZE,default=256"`
	LimitMessages        *int   `env:"LIMIT_MESSAGES"`
	CharReplacement      string `env:"CHARACTER_REPLACEMENT,default=*"`

	GCInterval             time.Duration `env:"GC_INTERVAL,default=5m"`
	PresenceReportInterval time.Duration `env:"PRESENCE_REPORT_INTERVAL,default=1m"`
}

func characterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
