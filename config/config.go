package config

import "os"

// AppName is used as the postgres schema name and as the default
// subject prefix for minted sessions.
const AppName = "aqua"

// ReceiptBucket is the storage bucket holding uploaded payment proofs.
const ReceiptBucket = "receipts"

// Env returns the value of the environment variable key, or fallback
// when it is unset or empty.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// AppLink is the public URL of the frontend, interpolated into
// reminder messages so recipients can open the app directly.
func AppLink() string {
	return Env("APP_LINK", "http://localhost:8080")
}
