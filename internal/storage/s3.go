// Package storage provides the object-storage transport uploads are written
// through. It speaks the S3 API, which also covers R2 and minio deployments
// via a custom endpoint.
package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/teamline/teamline/internal/config"
	"github.com/teamline/teamline/pkg/uploader"
	"go.uber.org/zap"
)

// UploadResult is the success payload handed to the coordinator's completed
// hook.
type UploadResult struct {
	ClientID  string
	ChannelID string
	Key       string
}

type S3Transport struct {
	client *s3.Client
	bucket string
	log    *zap.Logger
}

func NewS3Transport(cfg *config.StorageConfig, lg *zap.Logger) *S3Transport {
	awsCfg := aws.Config{
		Region: cfg.Region,
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &S3Transport{
		client: client,
		bucket: cfg.Bucket,
		log:    lg.Named("storage"),
	}
}

// ObjectKey places uploads under their channel, keyed by client id so
// resubmissions of the same filename never collide.
func ObjectKey(channelID, clientID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", channelID, clientID, filename)
}

type s3Request struct {
	cancel context.CancelFunc
}

func (r *s3Request) Abort() {
	r.cancel()
}

// Upload starts a PutObject in its own goroutine and returns immediately;
// Abort cancels the request context. Exactly one callback fires per call.
func (t *S3Transport) Upload(payload uploader.Payload, onSuccess func(data any), onError func(err error)) uploader.Request {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		defer cancel()
		key := ObjectKey(payload.ChannelID, payload.ClientID, payload.Filename)
		_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(t.bucket),
			Key:           aws.String(key),
			Body:          payload.Data,
			ContentLength: aws.Int64(payload.Size),
		})
		if err != nil {
			t.log.Debug("put object failed",
				zap.String("key", key),
				zap.String("clientId", payload.ClientID),
				zap.Error(err))
			onError(err)
			return
		}
		onSuccess(UploadResult{
			ClientID:  payload.ClientID,
			ChannelID: payload.ChannelID,
			Key:       key,
		})
	}()

	return &s3Request{cancel: cancel}
}
