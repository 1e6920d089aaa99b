// Package api provides the HTTP surface for the light race game.
//
// The api package implements:
//   - WebSocket upgrade handling (delegated to the hub)
//   - QR code onboarding image
//   - Read-only state endpoint
//   - Health check
//   - Static file serving for the display and controller pages
//
// Endpoints:
//
//   - GET /ws - Upgrade to WebSocket (players, host, and TV displays)
//   - GET /qr - PNG QR code pointing at the join page; ?size=N in pixels
//   - GET /api/state - Current session snapshot as JSON
//   - GET /healthz - Liveness probe
//   - GET /* - Static pages
//
// The QR code encodes the externally visible URL, reconstructed from the Host
// header and X-Forwarded-Proto so it stays correct behind a tunnel or reverse
// proxy.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// Usage:
//
//	server := api.NewServer(gameService, hub, "./static", logger)
//	http.ListenAndServe(":8080", server)
package api
