// Package memory provides an in-process implementation of store.UserStore.
// It is the reference backend for tests and the "memory" database driver.
package memory
