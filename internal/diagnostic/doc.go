// Package diagnostic provides structured warnings, errors and infos collected while a schema is
// built.
//
// Key capabilities:
//   - Configuration errors that abort the build, kept with their wrapped cause
//   - Warnings for ignored conversions and skipped types
//   - Infos explaining which codec each property received
package diagnostic
