// Package sqlite provides an embedded SQLite implementation of store.UserStore
// built on the pure-Go modernc.org/sqlite driver.
package sqlite
