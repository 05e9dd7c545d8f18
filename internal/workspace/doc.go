// Package workspace bootstraps a local multi-repository checkout: it lists the
// organization's repositories, classifies them by role, clones the missing
// ones, and writes the editor workspace file and the workspace manifest.
package workspace
