package fake

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Outputs struct {
	ListBuckets          *APIResponse
	GetBucketTagging     *APIResponse
	GetBucketLocation    *APIResponse
	ListObjectsV2        *APIResponse
	ListObjectVersions   *APIResponse
	DeleteObjects        *APIResponse
	ListMultipartUploads *APIResponse
	AbortMultipartUpload *APIResponse
	CreateBucket         *APIResponse
	PutBucketVersioning  *APIResponse
	PutBucketTagging     *APIResponse
	DeleteBucket         *APIResponse
}

// S3Client returns canned outputs, records the order of issued calls and the
// object batches passed to DeleteObjects.
type S3Client struct {
	Outputs S3Outputs

	Calls                []string
	DeletedObjectBatches [][]types.ObjectIdentifier
	DeletedBuckets       []string
}

func (m *S3Client) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *S3Client) ListBuckets(context.Context, *s3.ListBucketsInput, ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	m.record("ListBuckets")
	out, ok := m.Outputs.ListBuckets.response.(*s3.ListBucketsOutput)
	if !ok {
		return nil, m.Outputs.ListBuckets.err
	}
	return out, m.Outputs.ListBuckets.err
}

func (m *S3Client) GetBucketTagging(context.Context, *s3.GetBucketTaggingInput, ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	m.record("GetBucketTagging")
	out, ok := m.Outputs.GetBucketTagging.response.(*s3.GetBucketTaggingOutput)
	if !ok {
		return nil, m.Outputs.GetBucketTagging.err
	}
	return out, m.Outputs.GetBucketTagging.err
}

func (m *S3Client) GetBucketLocation(context.Context, *s3.GetBucketLocationInput, ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	m.record("GetBucketLocation")
	out, ok := m.Outputs.GetBucketLocation.response.(*s3.GetBucketLocationOutput)
	if !ok {
		return nil, m.Outputs.GetBucketLocation.err
	}
	return out, m.Outputs.GetBucketLocation.err
}

func (m *S3Client) ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.record("ListObjectsV2")
	out, ok := m.Outputs.ListObjectsV2.response.(*s3.ListObjectsV2Output)
	if !ok {
		return nil, m.Outputs.ListObjectsV2.err
	}
	return out, m.Outputs.ListObjectsV2.err
}

func (m *S3Client) ListObjectVersions(context.Context, *s3.ListObjectVersionsInput, ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
	m.record("ListObjectVersions")
	out, ok := m.Outputs.ListObjectVersions.response.(*s3.ListObjectVersionsOutput)
	if !ok {
		return nil, m.Outputs.ListObjectVersions.err
	}
	return out, m.Outputs.ListObjectVersions.err
}

func (m *S3Client) DeleteObjects(_ context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	m.record("DeleteObjects")
	if params.Delete != nil {
		m.DeletedObjectBatches = append(m.DeletedObjectBatches, params.Delete.Objects)
	}
	out, ok := m.Outputs.DeleteObjects.response.(*s3.DeleteObjectsOutput)
	if !ok {
		return nil, m.Outputs.DeleteObjects.err
	}
	return out, m.Outputs.DeleteObjects.err
}

func (m *S3Client) ListMultipartUploads(context.Context, *s3.ListMultipartUploadsInput, ...func(*s3.Options)) (*s3.ListMultipartUploadsOutput, error) {
	m.record("ListMultipartUploads")
	out, ok := m.Outputs.ListMultipartUploads.response.(*s3.ListMultipartUploadsOutput)
	if !ok {
		return nil, m.Outputs.ListMultipartUploads.err
	}
	return out, m.Outputs.ListMultipartUploads.err
}

func (m *S3Client) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	m.record("AbortMultipartUpload")
	out, ok := m.Outputs.AbortMultipartUpload.response.(*s3.AbortMultipartUploadOutput)
	if !ok {
		return nil, m.Outputs.AbortMultipartUpload.err
	}
	return out, m.Outputs.AbortMultipartUpload.err
}

func (m *S3Client) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	m.record("CreateBucket")
	out, ok := m.Outputs.CreateBucket.response.(*s3.CreateBucketOutput)
	if !ok {
		return nil, m.Outputs.CreateBucket.err
	}
	return out, m.Outputs.CreateBucket.err
}

func (m *S3Client) PutBucketVersioning(context.Context, *s3.PutBucketVersioningInput, ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error) {
	m.record("PutBucketVersioning")
	out, ok := m.Outputs.PutBucketVersioning.response.(*s3.PutBucketVersioningOutput)
	if !ok {
		return nil, m.Outputs.PutBucketVersioning.err
	}
	return out, m.Outputs.PutBucketVersioning.err
}

func (m *S3Client) PutBucketTagging(context.Context, *s3.PutBucketTaggingInput, ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	m.record("PutBucketTagging")
	out, ok := m.Outputs.PutBucketTagging.response.(*s3.PutBucketTaggingOutput)
	if !ok {
		return nil, m.Outputs.PutBucketTagging.err
	}
	return out, m.Outputs.PutBucketTagging.err
}

func (m *S3Client) DeleteBucket(_ context.Context, params *s3.DeleteBucketInput, _ ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	m.record("DeleteBucket")
	m.DeletedBuckets = append(m.DeletedBuckets, awssdk.ToString(params.Bucket))
	out, ok := m.Outputs.DeleteBucket.response.(*s3.DeleteBucketOutput)
	if !ok {
		return nil, m.Outputs.DeleteBucket.err
	}
	return out, m.Outputs.DeleteBucket.err
}

func MockListBucketsOutput(names ...string) *s3.ListBucketsOutput {
	buckets := make([]types.Bucket, 0, len(names))
	for _, name := range names {
		buckets = append(buckets, types.Bucket{Name: awssdk.String(name)})
	}
	return &s3.ListBucketsOutput{Buckets: buckets}
}

func MockGetBucketTaggingOutput(tags Tags) *s3.GetBucketTaggingOutput {
	tagSet := make([]types.Tag, 0, len(tags))
	for k, v := range tags {
		tagSet = append(tagSet, types.Tag{Key: awssdk.String(k), Value: awssdk.String(v)})
	}
	return &s3.GetBucketTaggingOutput{TagSet: tagSet}
}

func MockListObjectVersionsOutput(versionKeys, markerKeys []string) *s3.ListObjectVersionsOutput {
	out := &s3.ListObjectVersionsOutput{}
	for i, key := range versionKeys {
		out.Versions = append(out.Versions, types.ObjectVersion{
			Key:       awssdk.String(key),
			VersionId: awssdk.String(versionID("v", i)),
		})
	}
	for i, key := range markerKeys {
		out.DeleteMarkers = append(out.DeleteMarkers, types.DeleteMarkerEntry{
			Key:       awssdk.String(key),
			VersionId: awssdk.String(versionID("m", i)),
		})
	}
	return out
}

func versionID(prefix string, i int) string {
	return prefix + "-" + string(rune('0'+i))
}
