// Package services implements the driving port interfaces.
//
// The interesting pieces are the single-flight Authenticator, the
// RefreshThrottler and ReadCategory, the offline-first state machine every
// category stream runs through. Services depend only on ports; adapters are
// injected by cmd/gamefeed.
package services
