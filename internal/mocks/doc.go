// Package mocks provides shared test doubles for the account service and its
// dependencies.
//
// Two styles are used:
//
//   - testify mocks (TestifyMockUserStore, MockAccountService) when a test
//     asserts on calls and arguments
//   - function-field fakes (MockPasswordHasher, MockJWTService) when a test
//     only needs to steer return values
//
// Example:
//
//	users := &mocks.TestifyMockUserStore{}
//	users.On("FindByID", mock.Anything, id).Return(nil, store.ErrUserNotFound)
//
// Tests of package service that use these must live in service_test, since
// mocks imports service.
package mocks
