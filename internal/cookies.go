package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "bfl_access_token"
	COOKIE_REDIRECT_NAME     = "bfl_redirect"
)
