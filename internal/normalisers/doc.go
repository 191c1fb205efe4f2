// Package normalisers provides implementations of the Normaliser interface
// for the text formats found in a data directory. Each normaliser knows how
// to extract indexable text from a specific format.
//
// Normalisers are registered with a Registry at startup.
package normalisers
