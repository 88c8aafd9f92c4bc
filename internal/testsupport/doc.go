// Package testsupport provides an in-process fake control service for
// curator tests. The fake mirrors the real API's auth, status
// transitions, and JSON shapes closely enough that client and command
// tests exercise the same code paths as production.
package testsupport
