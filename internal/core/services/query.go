package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
	"github.com/custodia-labs/docindex/internal/core/ports/driving"
	"github.com/custodia-labs/docindex/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// blockedKeywords are rejected anywhere in a statement, checked in order.
var blockedKeywords = []string{"DROP", "DELETE", "INSERT", "UPDATE", "ALTER", "CREATE"}

var blockedPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(blockedKeywords))
	for i, kw := range blockedKeywords {
		patterns[i] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return patterns
}()

// QueryService runs validated SELECT statements against a read-only database.
type QueryService struct {
	mu     sync.Mutex
	open   func() (driven.QueryRunner, error)
	runner driven.QueryRunner
}

// NewQueryService creates a query service. The database is opened by open
// on the first accepted query and reopened on later queries if that fails.
func NewQueryService(open func() (driven.QueryRunner, error)) *QueryService {
	return &QueryService{open: open}
}

// Query validates statement and returns the rows it selects.
func (s *QueryService) Query(ctx context.Context, statement string) domain.Result[domain.QueryRows] {
	logger.Section("SQL Query")
	logger.Debug("Statement: %s", statement)

	if err := ValidateReadOnly(statement); err != nil {
		logger.Warn("Rejected query: %v", err)
		return domain.Fail[domain.QueryRows](domain.ErrorKindQuery, "%s", rejectionMessage(err))
	}

	runner, err := s.conn()
	if err != nil {
		return domain.FailFrom[domain.QueryRows](domain.ErrorKindQuery, err)
	}

	rows, err := runner.Query(ctx, statement)
	if err != nil {
		return domain.FailFrom[domain.QueryRows](domain.ErrorKindQuery, err)
	}
	if rows.Rows == nil {
		rows.Rows = []map[string]any{}
	}
	logger.Debug("Rows: %d", rows.Count)
	return domain.Succeed(rows)
}

func (s *QueryService) conn() (driven.QueryRunner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runner != nil {
		return s.runner, nil
	}
	runner, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open query database: %w", err)
	}
	s.runner = runner
	return runner, nil
}

// Close closes the database if it was opened.
func (s *QueryService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runner == nil {
		return nil
	}
	err := s.runner.Close()
	s.runner = nil
	return err
}

// keywordError names the blocked keyword found in a statement.
type keywordError struct {
	keyword string
}

func (e *keywordError) Error() string {
	return fmt.Sprintf("Keyword '%s' is not allowed", e.keyword)
}

func (e *keywordError) Unwrap() error {
	return domain.ErrQueryRejected
}

// ValidateReadOnly accepts statements that start with SELECT and contain
// none of the blocked keywords as whole words. Matching is case-insensitive.
func ValidateReadOnly(statement string) error {
	upper := strings.ToUpper(strings.TrimSpace(statement))
	if !strings.HasPrefix(upper, "SELECT") {
		return fmt.Errorf("%w: Only SELECT queries are allowed", domain.ErrQueryRejected)
	}
	for i, pattern := range blockedPatterns {
		if pattern.MatchString(upper) {
			return &keywordError{keyword: blockedKeywords[i]}
		}
	}
	return nil
}

func rejectionMessage(err error) string {
	var kwErr *keywordError
	if errors.As(err, &kwErr) {
		return kwErr.Error()
	}
	return "Only SELECT queries are allowed"
}
