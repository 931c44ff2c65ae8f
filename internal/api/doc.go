// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and AccountService, translating service outcomes into HTTP statuses:
// duplicates become 409, unknown accounts 404, failed credential checks 401
// or 400, and every unavailable fault a generic 500.
package api
