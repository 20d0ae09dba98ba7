package auth

const (
	InvalidAPIKey = "API key is invalid"
)
