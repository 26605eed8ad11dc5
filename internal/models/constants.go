package models

const (
	// UserIDHeader carries the trusted caller identity on every request.
	UserIDHeader = "X-Sharer-User-Id"

	// RequestIDHeader correlates gateway and server log lines.
	RequestIDHeader = "X-Request-ID"

	DefaultPageSize = 10

	MaxUserNameLength    = 100
	MaxItemNameLength    = 255
	MaxDescriptionLength = 512
	MaxCommentLength     = 500
)
