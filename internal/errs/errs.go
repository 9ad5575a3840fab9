// Package errs defines the error types returned to API clients.
//
// Every failure leaves the service as an HTTPError so clients always see
// the same {success:false, error, code, status} shape, with field details
// for validation failures and an optional action hint.
package errs
