// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the account
// store (defined in internal/store) to fulfill application features.
//
// AccountService is the only component allowed to call store.UserStore. It
// owns registration, authentication and credential mutation, and translates
// storage-level failures into the outcomes callers are expected to handle:
//
//   - ErrDuplicateUsername / ErrDuplicateEmail for uniqueness violations,
//     whether caught by a pre-check or by the store's own constraint
//   - ErrNotFound when an operation targets an account that does not exist
//   - a false result for a failed credential check
//   - ErrUnavailable for every other storage or hashing fault
//
// Raw store errors never cross this boundary.
package service
