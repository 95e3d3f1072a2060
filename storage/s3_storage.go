package storage

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	"github.com/tokenized/logger"
)

const (
	// S3ListLimit seems to need to be 1000. It is the default value according to the documentation,
	// but changing it doesn't seem to do anything. So we hard code it so it doesn't change on us.
	S3ListLimit = int64(1000)
)

// S3Storage implements the Storage interface for interacting with AWS S3.
type S3Storage struct {
	Config  Config
	Session *session.Session
}

// NewS3Storage creates a new S3Storage with a new aws.Session.
func NewS3Storage(config Config) S3Storage {
	return S3Storage{
		Config:  config,
		Session: newAWSSession(config),
	}
}

// NewS3StorageWithSession returns a new S3Storage with a given AWS Session.
func NewS3StorageWithSession(config Config, session *session.Session) S3Storage {
	return S3Storage{
		Config:  config,
		Session: session,
	}
}

// Write writes the data to the key in the S3 Bucket. S3 has no per object TTL so options.TTL is
// ignored. Expiring objects needs a bucket lifecycle rule.
func (s S3Storage) Write(ctx context.Context, key string, body []byte, options *Options) error {
	svc := s3.New(s.Session)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.Config.Bucket),
		Key:    aws.String(key),
	}

	var err error
	for i := 0; i <= s.Config.MaxRetries; i++ {
		if i != 0 {
			if !s.wait(ctx) {
				return errors.Wrapf(ctx.Err(), "key: %s", key)
			}
		}

		input.Body = bytes.NewReader(body)

		_, err = svc.PutObjectWithContext(ctx, input)
		if err == nil {
			return nil
		}

		logger.Error(ctx, "S3CallFailed to write to %s : %s", key, err)
	}

	logger.Error(ctx, "S3CallAborted write to %s : %s", key, err)
	return errors.Wrapf(err, "key: %s", key)
}

// Read will read the data from the S3 Bucket.
func (s S3Storage) Read(ctx context.Context, key string) ([]byte, error) {
	svc := s3.New(s.Session)

	var err error
	var b []byte
	for i := 0; i <= s.Config.MaxRetries; i++ {
		if i != 0 {
			if !s.wait(ctx) {
				return nil, errors.Wrapf(ctx.Err(), "key: %s", key)
			}
		}

		var document *s3.GetObjectOutput
		document, err = svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.Config.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) {
				return nil, ErrNotFound
			}

			logger.Error(ctx, "S3CallFailed to read from %s : %s", key, err)
			continue
		}

		b, err = io.ReadAll(document.Body)
		document.Body.Close()
		if err != nil {
			logger.Error(ctx, "S3CallFailed to read from %s : %s", key, err)
			continue
		}

		return b, nil
	}

	logger.Error(ctx, "S3CallAborted read from %s : %s", key, err)
	return nil, errors.Wrapf(err, "key: %s", key)
}

// Remove removes the object stored at key, in the S3 Bucket.
func (s S3Storage) Remove(ctx context.Context, key string) error {
	svc := s3.New(s.Session)

	do := &s3.DeleteObjectInput{
		Bucket: aws.String(s.Config.Bucket),
		Key:    aws.String(key),
	}

	var err error
	for i := 0; i <= s.Config.MaxRetries; i++ {
		if i != 0 {
			if !s.wait(ctx) {
				return errors.Wrapf(ctx.Err(), "key: %s", key)
			}
		}

		_, err = svc.DeleteObjectWithContext(ctx, do)
		if err == nil {
			return nil
		}

		if isNotFound(err) {
			return ErrNotFound
		}

		logger.Error(ctx, "S3CallFailed to delete object at %v : %v", key, err)
	}

	logger.Error(ctx, "S3CallAborted delete object at %v : %v", key, err)
	return errors.Wrapf(err, "delete key: %s", key)
}

// List returns all paths that start with "path". If you want to list a specific directory then add
// a slash at the end, but then you still have to watch for sub-directories being listed.
func (s S3Storage) List(ctx context.Context, path string) ([]string, error) {
	var err error
	var keys []string
	for i := 0; i <= s.Config.MaxRetries; i++ {
		if i != 0 {
			if !s.wait(ctx) {
				return nil, errors.Wrapf(ctx.Err(), "path: %s", path)
			}
		}

		keys, err = s.findKeys(ctx, path)
		if err == nil {
			return keys, nil
		} else if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}

		logger.Error(ctx, "S3CallFailed to search %v : %v", path, err)
	}

	logger.Error(ctx, "S3CallAborted search %v : %v", path, err)
	return nil, errors.Wrapf(err, "search %s", path)
}

func (s S3Storage) findKeys(ctx context.Context, path string) ([]string, error) {
	svc := s3.New(s.Session)
	var last *string
	var result []string
	limit := S3ListLimit

	for {
		input := &s3.ListObjectsV2Input{
			Bucket:     aws.String(s.Config.Bucket),
			Prefix:     &path,
			MaxKeys:    &limit,
			StartAfter: last,
		}

		out, err := svc.ListObjectsV2WithContext(ctx, input)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}

		for _, o := range out.Contents {
			result = append(result, *o.Key)
		}

		l := len(out.Contents)
		if l != int(S3ListLimit) {
			// Contents not full, so we must be done.
			break
		}

		// Keep calling until the result is not full.
		newLast := *out.Contents[l-1].Key
		last = &newLast
	}

	return result, nil
}

// wait sleeps for the retry delay and returns false if the context finishes first.
func (s S3Storage) wait(ctx context.Context) bool {
	select {
	case <-time.After(time.Duration(s.Config.RetryDelay) * time.Millisecond):
		return true
	case <-ctx.Done():
		return false
	}
}

func isNotFound(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == s3.ErrCodeNoSuchKey
	}
	return false
}

// newAWSSession creates a new AWS Session using the environment's credentials.
func newAWSSession(config Config) *session.Session {
	awsConfig := aws.NewConfig().WithMaxRetries(0)
	return session.Must(session.NewSession(awsConfig))
}
