package constants

// Context and session keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyTicket  = "ticket"
	ContextKeyLogger  = "logger"
	SessionCookieName = "helix_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
	BearerPrefix      = "Bearer "
	TokenIssuer       = "helix-track"
)

// Permissions
const (
	// NodeContextID is the instance-wide permission context; grants in it apply everywhere
	NodeContextID = "ctx-node"
)

// AI
const (
	MaxAIGeneratedTickets = 10
)
