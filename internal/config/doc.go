// Package config handles configuration loading, parsing, and validation
// from environment variables (TASKFLOW_ prefix) and an optional YAML file.
// Configuration is resolved once at startup and handed to components
// explicitly.
package config
