// Package connectors provides the source adapters that read raw inputs
// from disk: the forum export (discourse) and the archived documentation
// pages (filesystem).
package connectors
