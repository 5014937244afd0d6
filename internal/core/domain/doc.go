// Package domain defines the core business entities for gamefeed.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Credentials: the games API access token and its expiry
//   - Game, Article: locally persisted entities
//   - Category, Page, RefreshKey: what the refresh throttler keys on
//   - Update: one emission of a category stream
//   - HTTPError, NetworkError, UnknownError: the remote error taxonomy
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
