// Package naming compiles user-configurable templates into pure path
// rendering functions. A template mixes literal text with {token} or
// {token:width} placeholders; token values are sanitized to a safe
// filename character set while literal text passes through untouched.
package naming
