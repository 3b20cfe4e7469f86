// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the events feed.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Session token missing, invalid or expired.
)
