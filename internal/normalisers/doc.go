// Package normalisers provides implementations of the Normaliser interface.
// A normaliser separates a raw document into provenance metadata and the
// text that is handed to the chunker.
package normalisers
