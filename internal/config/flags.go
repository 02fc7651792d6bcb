package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a diagnostics listener address in format [host]:[port]
//	-d local database DSN (sqlite file path)
//	-r remote TMS API base URL
//	-c/-config json file path with configs
//	-device-id device installation identifier
//	-device-secret device secret for session key derivation
//	-token-issuer session token issuer name
//	-token-duration session token duration (e.g., "12h", "30m")
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-sync-interval background sync interval (e.g., "5m")
//	-max-retries default retry bound for queued actions
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var databaseDSN string
	var remoteBaseURL string
	var jsonConfigPath string
	var deviceID string
	var deviceSecret string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var maxRetries int

	flag.StringVar(&serverAddress, "a", "", "Diagnostics listener address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Local database DSN")
	flag.StringVar(&remoteBaseURL, "r", "", "Remote TMS API base URL")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&deviceID, "device-id", "", "Device installation identifier")
	flag.StringVar(&deviceSecret, "device-secret", "", "Device secret")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Session token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Session token duration (e.g., 12h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Outbound request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background sync interval (e.g., 5m)")
	flag.IntVar(&maxRetries, "max-retries", 0, "Default retry bound for queued actions")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			DeviceID:      deviceID,
			DeviceSecret:  deviceSecret,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
		},
		Remote: Remote{
			BaseURL:        remoteBaseURL,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Queue:        Queue{MaxRetries: maxRetries},
		Workers:      Workers{SyncInterval: syncInterval},
		Server:       Server{HTTPAddress: serverAddress},
		JSONFilePath: jsonConfigPath,
	}
}
