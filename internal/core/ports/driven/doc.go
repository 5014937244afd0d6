// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - CredentialsStore: persisted games API access token
//   - TokenSupplier: client-credentials token exchange
//   - ThrottleStore: last refresh time per refresh key
//   - GameStore, ArticleStore: local entity persistence with observe streams
//   - GamesAPI, ArticlesAPI: remote category endpoints
//   - SchedulerStore: background task state and history
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
