package haven

import (
	"fmt"

	"savehaven/internal/database/sqlc"
)

// GetHistory returns the most recent catalogue-changing operations, ordered newest first.
func (s *Service) GetHistory(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.database.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
