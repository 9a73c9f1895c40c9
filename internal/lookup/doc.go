// Package lookup fills metadata gaps from remote comic databases. The
// Gateway interface is the seam the reconciler sees: given partial
// identifying fields it returns at most one canonical match. Remote
// failures are retried with backoff inside the client and otherwise
// treated as "no match", never as a hard pipeline failure.
package lookup
