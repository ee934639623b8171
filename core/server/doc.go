// Package server holds the HTTP server configuration.
//
// The Config struct defines the listen address, the API key checked by the auth
// middleware, and how long graceful shutdown may take. Shutdown includes tearing down
// open binding sessions, which may write reverts to the store.
package server
