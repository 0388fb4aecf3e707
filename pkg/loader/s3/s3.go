package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"

	"github.com/sakshi-kadian/aurelius/pkg/loader"
)

// S3GraphFileLoader loads uploaded documents from an S3 bucket. The async
// ingest endpoint stores uploads there and the worker reads them back.
// Concurrent reads of one object share a single request; nothing is kept
// afterwards, so a long-running worker does not accumulate uploads.
type S3GraphFileLoader struct {
	bucket string
	client s3API
	group  singleflight.Group
}

type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3GraphFileLoaderWithClient creates a new S3GraphFileLoader using an
// existing s3.Client.
func NewS3GraphFileLoaderWithClient(bucket string, client *s3.Client) *S3GraphFileLoader {
	return &S3GraphFileLoader{
		bucket: bucket,
		client: client,
	}
}

// GetFileText retrieves the contents of the given GraphFile from the
// configured S3 bucket. FilePath is the object key.
func (l *S3GraphFileLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	key := file.FilePath
	result, err, _ := l.group.Do(loader.CacheKey(file), func() (any, error) {
		out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(l.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get object %s: %w", key, err)
		}
		defer out.Body.Close()

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, out.Body); err != nil {
			return nil, fmt.Errorf("failed to read object %s: %w", key, err)
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
