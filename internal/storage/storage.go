package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"bleedforlife/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore holds donor avatar images.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(ctx context.Context, key string) (string, error)
}

// New picks the backend named by config.StorageBackend. awsConfig is only
// consulted for the s3 backend.
func New(config *types.Config, awsConfig aws.Config) (ObjectStore, error) {
	switch strings.ToLower(config.StorageBackend) {
	case "", "s3":
		if config.S3BucketName == "" {
			return nil, fmt.Errorf("set S3_BUCKET_NAME for the s3 storage backend")
		}
		return NewS3Storage(s3.NewFromConfig(awsConfig), config.S3BucketName), nil
	case "supabase":
		if config.SupabaseProjectID == "" || config.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("set SUPABASE_PROJECT_ID and SUPABASE_SERVICE_KEY for the supabase storage backend")
		}
		return NewSupabaseStorage(config.SupabaseProjectID, config.SupabaseServiceKey, config.SupabaseBucketName), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.StorageBackend)
	}
}

var avatarContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// AcceptedAvatarType reports whether contentType is an image we store as an
// avatar.
func AcceptedAvatarType(contentType string) bool {
	return avatarContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// AvatarKey is the one object key holding a user's avatar. Uploads replace
// it in place, so profiles carry no reference to it.
func AvatarKey(userID string) string {
	return path.Join("avatars", userID)
}
