// Package errors holds error helpers shared by veracity's outbound clients
// and bootstrap code.
package errors

import "fmt"

// WrapWithContext prefixes err with context; nil stays nil.
func WrapWithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
