// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.twinsync/config.toml
//   - LoadEnvFiles: .env.local and .env loading via godotenv
//   - Resolve: merges file values, environment overrides and defaults into Settings
package file
