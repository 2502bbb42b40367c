// Package authclient is the Go client SDK for the courtbook auth service.
//
// It owns the client side of the session lifecycle: a durable credential
// store, an in-memory session manager hydrated from that store, an HTTP
// transport that injects the bearer credential and normalizes failures,
// and a pure route guard that decides whether a navigation is allowed.
package authclient
