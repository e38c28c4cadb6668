package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// objectPutter is the part of *minio.Client used here.
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type minioStorage struct {
	client     objectPutter
	bucketName string
	publicUrl  string
	Log        *zap.Logger
}

// NewMinioStorage stores objects in bucketName. Returned links are rooted at
// publicUrl when it is set and at the client endpoint otherwise.
func NewMinioStorage(minioClient *minio.Client, bucketName, publicUrl string, logger *zap.Logger) contracts.Storage {
	if publicUrl == "" {
		publicUrl = minioClient.EndpointURL().String()
	}
	return newMinioStorage(minioClient, bucketName, publicUrl, logger)
}

func newMinioStorage(client objectPutter, bucketName, publicUrl string, logger *zap.Logger) *minioStorage {
	return &minioStorage{
		client:     client,
		bucketName: bucketName,
		publicUrl:  strings.TrimRight(publicUrl, "/"),
		Log:        logger,
	}
}

func (m *minioStorage) Store(ctx context.Context, content []byte, objectPath, contentType string) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	_, err := m.client.PutObject(ctx, m.bucketName, objectPath, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		m.Log.Error("minioStorage.Store error calling PutObject",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingObjectPathKey, objectPath),
			zap.Error(err),
		)
		return "", exceptions.ErrMinioCreateObject(err, m.bucketName)
	}

	return fmt.Sprintf("%s/%s/%s", m.publicUrl, m.bucketName, objectPath), nil
}
