// Package postgres provides the PostgreSQL implementation of store.UserStore
// and the goose migrations for its schema. Queries go through database/sql
// with the pgx stdlib driver; driver errors are mapped to store errors by MapError.
package postgres
