// Package config provides configuration management for the testafy CLI.
//
// Configuration is resolved in layers, each overriding the previous one:
//
//  1. built-in defaults (GetDefaultConfig)
//  2. config.yaml in the configuration directory, ~/.config/testafy by default
//     or the directory given with --config-path
//  3. an optional .env file in the working directory, loaded into the process
//     environment without overwriting variables that are already set
//  4. TESTAFY_* environment variables
//  5. command line flags, applied by the cmd package
//
// # Configuration File
//
//	baseURI: https://app.testafy.com/api/v0/
//	login: alice
//	product: checkout
//	screenshots: true
//	polling:
//	  interval: 2s
//	  maxWait: 10m
//	  retryAttempts: 3
//	  retryDelay: 1s
//	logging:
//	  level: info
//	  format: text
//	artifacts:
//	  dir: ./screenshots
//	suite:
//	  parallel: 4
//	  failFast: false
//
// Passwords may be stored in the file but TESTAFY_PASSWORD or a .env file is
// preferred.
//
// # Environment Variables
//
//   - TESTAFY_BASE_URI
//   - TESTAFY_LOGIN
//   - TESTAFY_PASSWORD
//   - TESTAFY_PRODUCT
//   - TESTAFY_POLL_INTERVAL, TESTAFY_MAX_WAIT (Go durations)
//   - TESTAFY_LOG_LEVEL, TESTAFY_LOG_FORMAT
//
// Validate collects every problem into ValidationErrors instead of stopping
// at the first one.
package config
