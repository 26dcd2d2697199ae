package agent

import (
	"context"

	"robogen/internal/model"
)

// Generator produces rendered test-suite text from one operation model.
// Implementations may fail; the pipeline falls back to the deterministic
// synthesizer per operation, never aborting the batch.
type Generator interface {
	// Name identifies the strategy in metadata and summaries.
	Name() string

	// Generate renders the test suite for a single operation.
	Generate(ctx context.Context, op *model.OperationModel) (string, error)
}
