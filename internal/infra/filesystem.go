package infra

import (
	"github.com/scode/droponoff/internal/domain"
)

// AppLocatorImpl implements domain.AppLocator over a fixed candidate list.
type AppLocatorImpl struct {
	candidates  []string
	fileChecker FileChecker
}

// NewAppLocator creates a locator checking candidates in order.
func NewAppLocator(candidates []string) *AppLocatorImpl {
	return NewAppLocatorWithDeps(candidates, &RealFileChecker{})
}

// NewAppLocatorWithDeps creates a locator with an injectable file checker (for testing)
func NewAppLocatorWithDeps(candidates []string, fc FileChecker) *AppLocatorImpl {
	return &AppLocatorImpl{
		candidates:  append([]string(nil), candidates...),
		fileChecker: fc,
	}
}

// Locate returns the first candidate that exists.
func (l *AppLocatorImpl) Locate() (string, bool) {
	for _, path := range l.candidates {
		if l.fileChecker.Exists(path) {
			return path, true
		}
	}
	return "", false
}

// Ensure AppLocatorImpl implements domain.AppLocator.
var _ domain.AppLocator = (*AppLocatorImpl)(nil)
