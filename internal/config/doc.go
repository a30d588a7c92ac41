// Package config handles configuration loading, parsing, and validation.
// Settings come from IMTS_-prefixed environment variables and an optional
// config.yaml file, with environment variables taking precedence. It provides
// type-safe access to application settings while keeping configuration
// details separate from business logic.
package config
