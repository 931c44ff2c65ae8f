// Package domain contains the core business entities and validation rules of the
// task manager. It has no knowledge of storage, hashing or transport.
package domain
