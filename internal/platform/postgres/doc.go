// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store and of task.TaskStore.
//
// Stores accept a store.DBTX so they run against either *sql.DB or a
// transaction, and map driver errors through MapError. The schema lives in
// the migrations subpackage.
package postgres
