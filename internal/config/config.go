// Package config implements the small env-var helper trio the server and
// coalescer read their tunables from. Environment-derived configuration is
// deliberately read at call time rather than cached at startup, so tests can
// perturb BOT_TOKEN/BOT_USER_ID/COOLDOWN_SECONDS between requests.
package config

import (
	"os"
	"strconv"
	"time"
)

// EnvOr returns the value of the named environment variable, or def if it is
// unset or empty.
func EnvOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// EnvIntOr returns the named environment variable parsed as an int, or def
// if it is unset, empty, or unparseable.
func EnvIntOr(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDurationOr returns the named environment variable, interpreted as a
// count of seconds, as a time.Duration; or def if unset, empty, or
// unparseable.
func EnvDurationOr(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(n) * time.Second
}

// DefaultCooldownSeconds is the quiet window the event coalescer waits
// before dispatching a pending message, absent COOLDOWN_SECONDS.
const DefaultCooldownSeconds = 30

// Cooldown returns the configured coalescer cooldown window, reading
// COOLDOWN_SECONDS fresh on every call.
func Cooldown() time.Duration {
	return EnvDurationOr("COOLDOWN_SECONDS", DefaultCooldownSeconds*time.Second)
}

// BotCredentials returns BOT_TOKEN and BOT_USER_ID, and the names of
// whichever are empty. Callers use the missing slice to build the 422
// detail message the specification requires.
func BotCredentials() (token, userID string, missing []string) {
	token = os.Getenv("BOT_TOKEN")
	userID = os.Getenv("BOT_USER_ID")
	if token == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if userID == "" {
		missing = append(missing, "BOT_USER_ID")
	}
	return token, userID, missing
}
