// Package store defines the UserStore contract and the errors every backend
// reports. Implementations live under internal/platform and are shared by a
// common contract suite in storetest.
package store
