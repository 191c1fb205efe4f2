// Package html provides a Normaliser implementation for HTML documents.
// It walks the token stream, drops scripts, styles and the document head,
// and keeps one line of text per block element.
package html
