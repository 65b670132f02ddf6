package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrStorageDisabled is returned when attachments are used while object
// storage is switched off in configuration.
var ErrStorageDisabled = errors.New("object storage is not configured")

// DisabledStorage rejects every operation. It stands in for S3 when
// storage.enabled is false so the rest of the portal keeps working.
type DisabledStorage struct{}

// Put always fails with ErrStorageDisabled
func (DisabledStorage) Put(context.Context, string, io.Reader, int64, string) error {
	return ErrStorageDisabled
}

// PresignGet always fails with ErrStorageDisabled
func (DisabledStorage) PresignGet(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}
