// Package connectors provides implementations of the Connector interface.
// A connector knows how to list and read the raw documents of one source
// type. The filesystem connector reads posts from a local directory.
package connectors
