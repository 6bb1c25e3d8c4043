package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Read-only surfaces (availability GraphQL has no mutations, no auth)
	return []string{"/graphql", "/health"}
}
