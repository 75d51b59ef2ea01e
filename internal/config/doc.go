// Package config handles configuration loading, parsing, and validation
// from environment variables, an optional .env file and an optional config.yaml.
// Environment variables use the TASKER_ prefix, e.g. TASKER_SERVER_PORT.
package config
