// Package clipboard copies report output to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// Copy places contents on the system clipboard.
func Copy(contents string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard mechanism is available on this system")
	}
	if err := clipboard.WriteAll(contents); err != nil {
		return fmt.Errorf("set clipboard contents: %w", err)
	}
	return nil
}
