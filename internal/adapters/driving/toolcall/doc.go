// Package toolcall executes docindex tools by name with loosely typed
// JSON arguments and renders their results as JSON objects.
//
// It backs the HTTP tool endpoints and mirrors the tool surface of the
// MCP server, so both report results with the same shape:
//
//	{"success": true, ...payload}
//	{"success": false, "error": "..."}
package toolcall
