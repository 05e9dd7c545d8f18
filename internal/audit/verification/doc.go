// Package verification extracts requirement tags from test sources and binds
// them to the test definitions that follow.
package verification
