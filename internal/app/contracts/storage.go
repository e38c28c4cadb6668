package contracts

import "context"

type Storage interface {
	Store(ctx context.Context, content []byte, objectPath, contentType string) (string, error)
}
