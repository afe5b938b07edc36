package handler

type ContextKey string

var (
	SubCtxKey      ContextKey = "sub"
	UsernameCtxKey ContextKey = "username"
	RoleIDCtxKey   ContextKey = "roleID"
	AsesiCtxKey    ContextKey = "asesi"
)
