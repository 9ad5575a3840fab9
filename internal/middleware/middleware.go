// Package middleware holds the global and route-specific echo middleware:
// request ids, request-scoped logging, New Relic tracing, CORS, bearer-token
// and API-key authentication, rate limiting and the global error handler.
package middleware
