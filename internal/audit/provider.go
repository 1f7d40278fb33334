package audit

import (
	"context"

	"github.com/lucera/minicheck/internal/model"
)

// Checker defines the contract for any mini-check engine.
type Checker interface {
	Check(ctx context.Context, rawURL string) (*model.Report, error)
}
