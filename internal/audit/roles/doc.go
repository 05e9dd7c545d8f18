// Package roles assigns architectural roles to repositories from their topic
// metadata and defines the layout kind each role implies.
package roles
