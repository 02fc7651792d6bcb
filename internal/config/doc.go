// Package config provides configuration loading, merging, and validation
// facilities for the tms-mobile-sync agent.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Command-line flags
//  2. Environment variables
//  3. JSON config file
//
// The main entry points are [GetStructuredConfig] for the raw merged
// configuration and [GetAgentConfig] for the validated agent runtime view.
package config
