package outwriter

import (
	"os"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"golang.org/x/term"
)

// Table name column bounds.
const (
	minNameWidth = 12
	maxNameWidth = 40
)

// GetMaxTableNameWidth calculates the maximum width for country or dataset
// names in table output based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Index + Label with borders/padding
	baseWidth := 30

	// One narrow column per dimension
	baseWidth += 9 * len(schema.AllDimensions)

	if cfg.Explain {
		baseWidth += 30
	}

	available := termWidth - baseWidth
	if available < minNameWidth {
		return minNameWidth
	}
	if available > maxNameWidth {
		return maxNameWidth
	}
	return available
}
