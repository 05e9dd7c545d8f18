// Package templates defines the golden directory templates each repository
// role is expected to satisfy, expands them per discovered service, and loads
// optional YAML overrides.
package templates
