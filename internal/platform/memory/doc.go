// Package memory provides map-backed implementations of the store
// interfaces. They back the "memory" database driver for local runs and
// serve as fakes in service and handler tests. Returned entities are copies.
package memory
