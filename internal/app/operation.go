package app

import "strings"

// Operation statuses written to the history table.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation tracks a request that changes the catalogue or a live save.
// Operations are created in memory with ID=0; track persists them.
type Operation struct {
	ID         int64
	Name       string
	Parameters string
	Status     string
}

// NewOperation creates a new in-memory operation that will succeed unless Fail is called.
func NewOperation(name, parameters string) *Operation {
	return &Operation{
		Name:       name,
		Parameters: parameters,
		Status:     StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = StatusError
}

// Params renders alternating key/value pairs as "k=v k=v", skipping empty values.
func Params(kv ...string) string {
	var parts []string
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		parts = append(parts, kv[i]+"="+kv[i+1])
	}
	return strings.Join(parts, " ")
}
