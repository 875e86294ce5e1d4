// Package file provides file-based configuration for kbuild.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (kbuild.toml)
//   - LoadSettings / WriteDefaults: mapping between config keys and domain.Settings
//   - LoadEnv / LoadAPIKey: credentials from the environment and .env files
package file
