// Package workspace defines the domain model for the curation pipeline:
// candidates and their lifecycle statuses, source pages, workspace
// configuration, aggregate stats, and log events. It contains no I/O;
// everything here operates on values already fetched from the control
// service.
package workspace
