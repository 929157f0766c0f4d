// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in the store package. Each store accepts a store.DBTX
// so it works identically against a connection pool or inside a transaction.
package postgres
