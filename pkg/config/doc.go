// Package config loads ai-rules configuration files.
//
// It provides a generic [Loader] for every versioned configuration kind, and
// helpers that locate and load the global and project configuration.
package config
