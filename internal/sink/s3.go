package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the subset of *s3.Client used by the store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3 stores each chunk as an object "{prefix}{key}/{index}".
type S3 struct {
	client s3API
	bucket string
	prefix string
}

func NewS3(client s3API, bucket, prefix string) *S3 {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// NewS3FromConfig builds an S3 client the same way for AWS and for
// S3-compatible endpoints such as MinIO (path-style addressing).
func NewS3FromConfig(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("sink: s3 store needs a bucket")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3(client, cfg.Bucket, cfg.Prefix), nil
}

func (s *S3) keyPrefix(key string) string {
	return s.prefix + key + "/"
}

func (s *S3) objectKey(key string, index int) string {
	return fmt.Sprintf("%s%010d", s.keyPrefix(key), index)
}

func (s *S3) Write(ctx context.Context, key string, index int, data []byte) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key, index)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("s3 put: %w", err)
	}
	return nil
}

func (s *S3) list(ctx context.Context, key string, limit int32) ([]string, error) {
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.keyPrefix(key)),
	}
	if limit > 0 {
		in.MaxKeys = aws.Int32(limit)
	}

	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if limit > 0 && len(keys) >= int(limit) {
			break
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	keys, err := s.list(ctx, key, 0)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNotFound
	}
	return &objectChain{ctx: ctx, s: s, keys: keys}, nil
}

func (s *S3) Exists(ctx context.Context, key string) (bool, error) {
	keys, err := s.list(ctx, key, 1)
	if err != nil {
		return false, err
	}
	return len(keys) > 0, nil
}

// s3DeleteBatch is the DeleteObjects per-request limit.
const s3DeleteBatch = 1000

func (s *S3) Delete(ctx context.Context, key string) error {
	keys, err := s.list(ctx, key, 0)
	if err != nil {
		return err
	}
	for start := 0; start < len(keys); start += s3DeleteBatch {
		end := min(start+s3DeleteBatch, len(keys))
		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
		}
		_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("s3 delete: %w", err)
		}
	}
	return nil
}

func (s *S3) Close() error { return nil }

// objectChain streams chunk objects one after another.
type objectChain struct {
	ctx  context.Context
	s    *S3
	keys []string
	cur  io.ReadCloser
}

func (c *objectChain) Read(p []byte) (int, error) {
	for {
		if c.cur == nil {
			if len(c.keys) == 0 {
				return 0, io.EOF
			}
			out, err := c.s.client.GetObject(c.ctx, &s3.GetObjectInput{
				Bucket: aws.String(c.s.bucket),
				Key:    aws.String(c.keys[0]),
			})
			if err != nil {
				return 0, fmt.Errorf("s3 get: %w", err)
			}
			c.keys = c.keys[1:]
			c.cur = out.Body
		}
		n, err := c.cur.Read(p)
		if errors.Is(err, io.EOF) {
			c.cur.Close()
			c.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *objectChain) Close() error {
	if c.cur != nil {
		err := c.cur.Close()
		c.cur = nil
		return err
	}
	return nil
}
