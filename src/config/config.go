package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// CredentialSecret is the server secret mixed into magic-link hashes.
func CredentialSecret() string {
	return os.Getenv("CREDENTIAL_SECRET")
}

// TicketSecret signs QR ticket tokens. Kept separate from the credential
// secret so rotating one does not invalidate the other.
func TicketSecret() []byte {
	return []byte(os.Getenv("TICKET_SECRET"))
}

// CredentialWindow is how long an issued magic link stays valid.
func CredentialWindow() time.Duration {
	hoursEnv := os.Getenv("CREDENTIAL_WINDOW_HOURS")
	hours, err := strconv.Atoi(hoursEnv)
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// EventEndTime is the absolute expiry shared by every issued ticket.
// All tickets for the gala expire together when the event closes.
func EventEndTime() time.Time {
	endEnv := os.Getenv("EVENT_END_AT")
	end, err := time.Parse(TIME_PARSE_FORMAT, endEnv)
	if err != nil {
		log.Printf("Could not parse EVENT_END_AT [%s], defaulting to 48h from now: %v\n", endEnv, err)
		return time.Now().Add(48 * time.Hour)
	}
	return end
}

// PublicRateLimit returns the request ceiling and window for the public
// application and link-request endpoints.
func PublicRateLimit() (int64, time.Duration) {
	limitEnv := os.Getenv("PUBLIC_RATE_LIMIT")
	limit, err := strconv.ParseInt(limitEnv, 10, 64)
	if err != nil || limit <= 0 {
		limit = 5
	}
	windowEnv := os.Getenv("PUBLIC_RATE_WINDOW_MINUTES")
	mins, err := strconv.Atoi(windowEnv)
	if err != nil || mins <= 0 {
		mins = 15
	}
	return limit, time.Duration(mins) * time.Minute
}
