package common

// GetAccountFromArgs extracts the account name from request arguments,
// defaulting to "default" when no account is provided. Account names key the
// per-account token files, so every tool resolves its account the same way.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}
