package service

import (
	"context"
	"errors"
	"time"

	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// storeError maps a repository failure onto the public taxonomy. Decode and
// conflict errors keep their kind, everything else is STORAGE_UNAVAILABLE.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, appErrors.ErrDecode) || errors.Is(err, appErrors.ErrConflict) {
		return err
	}
	return appErrors.Unavailable(err, message)
}
