package s3infra

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct{ mock.Mock }

func (m *mockS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, m.Called(ctx, in).Error(0)
}
func (m *mockS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, m.Called(ctx, in).Error(0)
}
func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, m.Called(ctx, in).Error(0)
}

func TestStore_Exists(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{"present", nil, true, false},
		{"typed not found", &types.NotFound{}, false, false},
		{"generic not found", &smithy.GenericAPIError{Code: "NotFound"}, false, false},
		{"forbidden", &smithy.GenericAPIError{Code: "Forbidden"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockS3{}
			m.On("HeadObject", mock.Anything, mock.Anything).Return(tt.err)
			got, err := NewStore(m, "b").Exists(context.Background(), "k")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_CheckAccess_WrapsBucket(t *testing.T) {
	m := &mockS3{}
	m.On("HeadBucket", mock.Anything, mock.Anything).Return(errors.New("denied"))
	err := NewStore(m, "bernard-public").CheckAccess(context.Background())
	assert.ErrorContains(t, err, "bernard-public")
}

func TestStore_PutPublic_SetsACLAndDisposition(t *testing.T) {
	m := &mockS3{}
	m.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "b" && *in.Key == "k.txt" &&
			in.ACL == types.ObjectCannedACLPublicRead &&
			*in.ContentDisposition == "inline" &&
			*in.ContentType == "text/plain; charset=utf-8"
	})).Return(nil)

	err := NewStore(m, "b").PutPublic(context.Background(), "k.txt", strings.NewReader("hi"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	m.AssertExpectations(t)
}
