// Package session persists the opaque bearer credential for the control
// service. The token lives in a single file under the state directory;
// an absent or empty file means unauthenticated. Writes are guarded by a
// file lock so concurrent curator invocations cannot interleave a save
// with a clear.
package session
