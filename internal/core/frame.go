package core

import "github.com/arcflow-labs/pocl/internal/domain"

// Frame is an instantiated decomposition frame (§3, §4.6): a fresh id, a
// reference to the schema it was instantiated from, the fresh step ids
// assigned to its pseudo-steps (dummy initial, dummy final, and body
// steps, in schema-local-id order), and the dummy initial/final ids picked
// out for quick reference by the splicing algorithm.
type Frame struct {
	ID             int
	Schema         *domain.Decomposition
	StepIDs        []int
	DummyInitialID int
	DummyFinalID   int
}
