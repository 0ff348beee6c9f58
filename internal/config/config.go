package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints and durations
// for the booking engine tunables.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify JWTs

	SearchDays     int           // rolling availability window in days
	SlotDuration   time.Duration // default appointment length
	SlotStride     time.Duration // slice-mode cursor advance
	HoldTTL        time.Duration // lifetime of an unconfirmed reservation
	ReaperInterval time.Duration // how often overdue holds are expired
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The engine tunables
// all have sensible defaults and are optional.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		JWTSecret: must("JWT_SECRET"),   // secret used for verifying JWTs

		SearchDays:     intOr("BOOKING_SEARCH_DAYS", 14),
		SlotDuration:   minutesOr("BOOKING_SLOT_DURATION_MIN", 30),
		SlotStride:     minutesOr("BOOKING_SLOT_STRIDE_MIN", 15),
		HoldTTL:        secondsOr("BOOKING_HOLD_TTL_SEC", 600),
		ReaperInterval: secondsOr("BOOKING_REAPER_INTERVAL_SEC", 60),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr retrieves an optional integer environment variable, falling back
// to def when unset.  A malformed value is still fatal: a typo silently
// reverting a tunable to its default would be worse than a crash at boot.
func intOr(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

// minutesOr reads an optional integer env var expressed in minutes.
func minutesOr(key string, def int) time.Duration {
	return time.Duration(intOr(key, def)) * time.Minute
}

// secondsOr reads an optional integer env var expressed in seconds.
func secondsOr(key string, def int) time.Duration {
	return time.Duration(intOr(key, def)) * time.Second
}
