// Package sqlite is the local persistent store for gamefeed.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation, and serves
// several driven ports from one database:
//
//   - GameStore and ArticleStore: upserted entities with observable windows
//   - CredentialsStore: the single games API token record
//   - SchedulerStore: daemon task state and run history
//
// # Observing
//
// Observe calls emit the current window and then re-query after every write
// made through this Store. WatchExternalChanges extends that to writes made by
// other processes (for example a running daemon) sharing the data directory.
//
// # Data Location
//
// By default, the database is stored at ~/.gamefeed/data/gamefeed.db
package sqlite
