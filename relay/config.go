package relay

// Config is the relay server configuration.
type Config struct {
	// Address to listen on (e.g., ":3001")
	ListenAddr string

	// AllowOrigins is the CORS allow-list. Empty or "*" permits any origin.
	AllowOrigins []string

	// Version is reported by the MCP server implementation info.
	Version string
}
