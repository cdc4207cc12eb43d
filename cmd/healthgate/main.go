// Healthgate serves an aggregated health endpoint for a process.
//
// Usage:
//
//	# Serve the endpoint with defaults (port 8081)
//	healthgate run
//
//	# Serve with a configuration file and .env overrides
//	healthgate run --config healthgate.yaml --env-file .env
//
//	# Run every check once and print the merged details
//	healthgate check
//
//	# Show version information
//	healthgate version
package main

func main() {
	Execute()
}
