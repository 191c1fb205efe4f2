// Package rest provides the JSON HTTP API for docindex, built on gin.
//
// Routes:
//
//	GET  /health            service status and tool count
//	GET  /api/tools         function-calling tool definitions
//	POST /api/tools/:name   execute a tool with JSON arguments
//	POST /api/documents     index a document by filename, optionally with inline content
//	GET  /api/documents     list indexed documents
//	GET  /api/search        search with ?q= and optional &top_k=
//
// Failures are reported as {"success": false, "error": "..."} with a status
// derived from the failure kind.
package rest
