// Package versioning maintains the per-service version files and the root
// global version marker: patch bumps for single services and coordinated
// minor/major releases that realign every service.
package versioning
