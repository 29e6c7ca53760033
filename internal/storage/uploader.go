package storage

import (
	"context"
	"errors"
	"io"
)

// Uploader abstrae la subida de archivos a un almacén remoto.
// Devuelve la URL pública del objeto subido.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, filename, category string) (string, error)
}

type disabledUploader struct {
	reason string
}

func NewDisabledUploader(reason string) Uploader {
	return &disabledUploader{reason: reason}
}

func (u *disabledUploader) Upload(_ context.Context, _ io.Reader, _, _ string) (string, error) {
	if u.reason == "" {
		return "", errors.New("uploader disabled")
	}
	return "", errors.New(u.reason)
}
