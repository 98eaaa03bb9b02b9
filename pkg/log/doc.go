// Package log provides a package-level zerolog.Logger shared by every
// long-running loop in the durability core (consensus, WAL force-sync,
// transport). Call Init once at process start; use WithComponent to derive
// child loggers for each subsystem.
package log
