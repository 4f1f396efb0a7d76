// internal/service/auth/clientid.go
package auth

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
)

const maxClientIDAttempts = 5

// newClientID generates a public client id, retrying with a fresh
// candidate on the (vanishingly rare) directory collision.
func (s *Service) newClientID(ctx context.Context) (string, error) {
	for i := 0; i < maxClientIDAttempts; i++ {
		candidate := ulid.Make().String()

		existing, err := s.directory.FindUserByField(ctx, "client_id", candidate)
		if err != nil {
			return "", fmt.Errorf("failed to probe client id: %w", err)
		}
		if existing == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not allocate a client id after %d attempts", maxClientIDAttempts)
}
