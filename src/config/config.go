package config

import (
	"fmt"
	"os"
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

// DATE_FORMAT is the wire format for calendar dates. Reservations work in
// whole UTC days.
const DATE_FORMAT = "2006-01-02"

// Default fee parameters. Percentages apply to the base price in centavos;
// STRIPE_FIXED_FEE_CENTS is the flat processor surcharge.
const (
	SERVICE_FEE_PCT        = 0.07
	APP_FEE_PCT            = 0.10
	OWNER_PAYOUT_PCT       = 0.90
	STRIPE_PCT             = 0.0
	STRIPE_FIXED_FEE_CENTS = 39
)

// STRIPE_CALL_TIMEOUT bounds every call against the payment processor so a
// hung request cannot block the caller indefinitely.
const STRIPE_CALL_TIMEOUT_SECONDS = 15

const CURRENCY = "brl"
