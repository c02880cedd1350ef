package contextkeys

type contextKey string

// DBContextKey holds the *gorm.DB (pool or request transaction) in gin/context values.
const DBContextKey = contextKey("db")

// Gin context keys set by the auth middleware.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
	StatusKey = "userStatus"
)
