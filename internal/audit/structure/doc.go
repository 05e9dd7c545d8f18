// Package structure audits repository trees against the golden template for
// their role, reporting present, missing, and unexpected paths.
package structure
