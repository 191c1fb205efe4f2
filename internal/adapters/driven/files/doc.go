// Package files provides the sandboxed implementation of driven.FileAccess.
//
// Only regular files directly inside the data directory can be listed, and
// reads are limited to UTF-8 text under a size cap.
package files
