// Package client talks to the passvault HTTP API on behalf of one user.
//
// HTTPClient implements vault.Store: every request carries the user's
// bearer token, replies are unwrapped from the {"success","data","error"}
// envelope, and HTTP statuses are mapped back to the sentinel errors of
// package common so that callers can use errors.Is:
//
//	400 -> common.ErrorValidation
//	401 -> common.ErrorUnauthenticated
//	404 -> common.ErrorUnauthorized or common.ErrorNotFound
//	409 -> common.ErrorAlreadyExists
//
// Transport failures and 5xx replies wrap ErrUnavailable.
package client
