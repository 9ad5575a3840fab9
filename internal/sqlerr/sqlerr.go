// Package sqlerr turns Postgres driver errors into API errors.
//
// Constraint violations on the chat tables become 400s with a stable code
// (CHAT_SESSION_ALREADY_EXISTS, CHAT_MESSAGE_REQUIRED, ...), missing rows
// become 404s and everything else is a 500 that hides driver details.
package sqlerr
