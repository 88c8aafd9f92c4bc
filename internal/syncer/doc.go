// Package syncer keeps a local view of control service state eventually
// consistent with the server. It owns the refresh policy: one gated
// initial load, a fixed-interval poll of the live resources (logs,
// candidates, stats), and out-of-band refreshes after mutations. Each
// fetched resource replaces its local slot wholesale; there is no
// incremental merge, the server snapshot always wins.
package syncer
