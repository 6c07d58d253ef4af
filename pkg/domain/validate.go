package domain

import "skirace/pkg/domainerr"

// validationf is a thin local alias so every Validate method in this
// package reads the same way without importing domainerr under a longer
// name at every call site.
func validationf(format string, args ...any) error {
	return domainerr.Validationf(format, args...)
}
