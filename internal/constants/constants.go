package constants

import "time"

// Pagination
const (
	MinPageSize     = 1
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Credentials
const (
	MinPasswordLength   = 6
	DefaultBcryptCost   = 10
	DefaultAccessTTL    = time.Hour
	DefaultRefreshTTL   = 7 * 24 * time.Hour
	MemberIDDigits      = 6
	MemberIDMaxAttempts = 10
)

// Cookie names carrying the session tokens.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Gin context keys
const (
	ContextKeyPrincipal = "principal"
)

// Profile images
const (
	MaxProfileImageBytes = 5 << 20
	ProfileImagePrefix   = "workboard_users"
)
