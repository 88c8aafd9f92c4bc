// Package config loads and validates curator's TOML configuration. The
// file lives at ~/.config/curator/config.toml by default; a curator.toml
// in the working directory is honored as a project-local fallback.
// Selected values can be overridden from the environment (optionally via
// a .env file): CURATOR_API_URL replaces the remote base URL and
// CURATOR_CONFIG points at an alternate config file.
package config
