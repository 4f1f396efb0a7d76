// internal/service/notify/service.go
package notify

import (
	"context"
	"fmt"

	xerrors "sentra-auth/internal/pkg/errors"
)

// Channel delivers a verification code to a destination and returns a
// provider message id for tracing. Delivery failures wrap
// xerrors.ErrCodeDelivery.
type Channel interface {
	SendCode(ctx context.Context, destination, code string) (string, error)
}

func deliveryErr(err error) error {
	return fmt.Errorf("%w: %v", xerrors.ErrCodeDelivery, err)
}
