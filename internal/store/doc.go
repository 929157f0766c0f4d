// Package store defines the persistence interfaces for the application's
// entities along with the sentinel errors and transaction helpers that all
// implementations share. Concrete implementations live under
// internal/platform.
package store
