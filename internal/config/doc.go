// Package config defines the application configuration structures and the
// logic for loading them from the environment and optional config files.
package config
