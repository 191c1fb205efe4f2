package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docindex/internal/adapters/driving/toolcall"
	"github.com/custodia-labs/docindex/internal/core/domain"
)

// IndexRequest is the body of POST /api/documents.
// Without Content the file is read from the data directory.
type IndexRequest struct {
	Filename string  `json:"filename" binding:"required"`
	Content  *string `json:"content"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"tools_count": len(s.executor.Tools()),
		"version":     s.version,
	})
}

func (s *Server) handleListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.executor.Definitions()})
}

func (s *Server) handleExecuteTool(c *gin.Context) {
	var args map[string]any
	if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
		if bodyTooLarge(err) {
			respond(c, toolcall.Render(domain.FailTooLarge[map[string]any](s.maxBytes)))
			return
		}
		badRequest(c, "invalid JSON arguments: "+err.Error())
		return
	}

	out, err := s.executor.Execute(c.Request.Context(), c.Param("name"), args)
	switch {
	case errors.Is(err, toolcall.ErrToolNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		badRequest(c, err.Error())
		return
	}

	respond(c, out)
}

func (s *Server) handleIndexDocument(c *gin.Context) {
	var req IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if bodyTooLarge(err) {
			respond(c, toolcall.Render(domain.FailTooLarge[domain.IndexOutcome](s.maxBytes)))
			return
		}
		badRequest(c, "filename is required")
		return
	}

	ctx := c.Request.Context()
	if req.Content != nil {
		if int64(len(*req.Content)) > s.maxBytes {
			respond(c, toolcall.Render(domain.FailTooLarge[domain.IndexOutcome](s.maxBytes)))
			return
		}
		respond(c, toolcall.Render(s.services.Index.IndexDocument(ctx, req.Filename, *req.Content)))
		return
	}
	respond(c, toolcall.Render(s.services.FileIndex.IndexFile(ctx, req.Filename)))
}

func (s *Server) handleListDocuments(c *gin.Context) {
	respond(c, toolcall.Render(s.services.Index.ListIndexedDocuments(c.Request.Context())))
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		badRequest(c, "q is required")
		return
	}

	topK := domain.DefaultTopK
	if raw := c.Query("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "top_k must be an integer")
			return
		}
		topK = n
	}

	respond(c, toolcall.Render(s.services.Index.Search(c.Request.Context(), query, topK)))
}

// respond writes a rendered outcome with a status derived from its failure kind.
func respond(c *gin.Context, out toolcall.Outcome) {
	status := http.StatusOK
	if !out.OK() {
		status = StatusFor(out.Failure.Kind)
	}
	c.JSON(status, out.Body)
}

func bodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

// StatusFor maps a failure kind to an HTTP status code.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrorKindAccessDenied:
		return http.StatusForbidden
	case domain.ErrorKindNotFound:
		return http.StatusNotFound
	case domain.ErrorKindTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.ErrorKindNoContent:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
