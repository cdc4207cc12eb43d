// Package config loads healthgate configuration.
//
// Configuration is assembled in a fixed order:
//
//  1. .env files are loaded into the process environment (existing
//     variables win)
//  2. defaults are applied
//  3. the YAML file, after strict ${VAR} expansion, is decoded on top
//  4. HEALTHGATE_* environment variables override individual fields
//  5. defaults that depend on other fields are filled in
//  6. the result is validated
//
// A minimal file:
//
//	healthcheck:
//	  enabled: true
//	  port: 8081
//	  check_timeout: 2s
//	observe:
//	  service_name: billing
//	  logging:
//	    enabled: true
//	    level: info
//	    format: json
//	metrics_server:
//	  address: ":9090"
package config
