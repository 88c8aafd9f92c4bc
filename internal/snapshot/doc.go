// Package snapshot persists the last successfully fetched server view
// in a local SQLite database. It lets curator render the last-known
// dashboard when the control service is unreachable. The cache follows
// the same consistency contract as the live view: each resource slot is
// replaced wholesale, never merged.
package snapshot
