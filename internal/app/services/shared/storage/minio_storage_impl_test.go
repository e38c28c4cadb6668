package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockObjectPutter struct {
	mock.Mock
}

func (m *MockObjectPutter) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func TestMinioStorage_Store(t *testing.T) {
	ctx := context.Background()
	content := []byte("invoice body")

	t.Run("returns public link", func(t *testing.T) {
		client := new(MockObjectPutter)
		client.On("PutObject", ctx, "invoices", "invoices/doc-1/wd.txt", mock.Anything, int64(len(content)),
			minio.PutObjectOptions{ContentType: "text/plain"}).Return(minio.UploadInfo{}, nil)

		link, err := newMinioStorage(client, "invoices", "https://files.example.com/", zap.NewNop()).
			Store(ctx, content, "invoices/doc-1/wd.txt", "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "https://files.example.com/invoices/invoices/doc-1/wd.txt", link)
		client.AssertExpectations(t)
	})

	t.Run("upload failure", func(t *testing.T) {
		client := new(MockObjectPutter)
		client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("bucket gone"))

		_, err := newMinioStorage(client, "invoices", "", zap.NewNop()).Store(ctx, content, "x.txt", "text/plain")
		assert.Error(t, err)
	})
}
