package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() S3Config {
	return S3Config{
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Bucket:       "passvault",
	}
}

// stubS3 replaces every AWS seam and restores them when the test ends.
func stubS3(t *testing.T) (uploaded *[]byte, presignedExpiry *time.Duration) {
	t.Helper()

	origLoad, origNew, origPre, origPut, origGet, origNow :=
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, putObject, presignGetObject, now
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, putObject, presignGetObject, now =
			origLoad, origNew, origPre, origPut, origGet, origNow
	})

	var body []byte
	var expiry time.Duration

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		assert.Equal(t, "passvault", *in.Bucket)
		assert.Equal(t, "application/json", *in.ContentType)
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		body = b
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		expiry = po.Expires
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/" + *in.Key + "?sig=1"}, nil
	}
	now = func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }

	return &body, &expiry
}

func TestS3Exporter_Export(t *testing.T) {
	body, expiry := stubS3(t)

	snap := &Snapshot{
		Version: SnapshotVersion,
		UserID:  "u1",
		Salt:    "c2FsdA==",
		Credentials: []*models.Credential{
			{ID: "c1", UserID: "u1", Website: "example.com", Ciphertext: "Y3Q=", IV: "aXY=", Category: "personal"},
		},
	}

	got, err := NewS3Exporter(testConfig()).Export(context.Background(), snap)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^backups/u1/2024/03/07/[0-9a-f-]{36}\.json$`), got.Key)
	assert.Equal(t, "https://s3.local/"+got.Key+"?sig=1", got.URL)
	assert.Equal(t, time.Date(2024, 3, 7, 12, 15, 0, 0, time.UTC), got.ExpiresAt)
	assert.Equal(t, 15*time.Minute, *expiry)

	var stored Snapshot
	require.NoError(t, json.Unmarshal(*body, &stored))
	assert.Equal(t, "u1", stored.UserID)
	require.Len(t, stored.Credentials, 1)
	assert.Equal(t, "Y3Q=", stored.Credentials[0].Ciphertext)
}

func TestS3Exporter_NotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Bucket = ""

	_, err := NewS3Exporter(cfg).Export(context.Background(), &Snapshot{UserID: "u1"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Disabled{}.Export(context.Background(), &Snapshot{UserID: "u1"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestS3Exporter_Failures(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		stubS3(t)
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("load-fail")
		}
		_, err := NewS3Exporter(testConfig()).Export(context.Background(), &Snapshot{UserID: "u1"})
		assert.EqualError(t, err, "load-fail")
	})

	t.Run("upload", func(t *testing.T) {
		stubS3(t)
		putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, errors.New("bucket missing")
		}
		_, err := NewS3Exporter(testConfig()).Export(context.Background(), &Snapshot{UserID: "u1"})
		assert.ErrorContains(t, err, "upload snapshot: bucket missing")
	})

	t.Run("presign", func(t *testing.T) {
		stubS3(t)
		presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
			return nil, errors.New("sign-fail")
		}
		_, err := NewS3Exporter(testConfig()).Export(context.Background(), &Snapshot{UserID: "u1"})
		assert.ErrorContains(t, err, "presign snapshot: sign-fail")
	})
}

func TestStorageKey_Unique(t *testing.T) {
	ts := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	a, b := StorageKey("u1", ts), StorageKey("u1", ts)
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "backups/u1/2025/12/31/")
}
