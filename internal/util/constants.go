package util

// gin.Context 键
const (
	UserContextKey  = "user"
	CurrentUserKey  = "currentUser"
	TokenContextKey = "token"
	RequestIDKey    = "RequestID"
	RequestIDHeader = "X-Request-ID"
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)
