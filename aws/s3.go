package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"
)

// ListBuckets returns the names of all buckets owned by the account. Bucket
// listing is global, callers have to check the bucket region before issuing
// regional operations.
func (a *Adapter) ListBuckets(ctx context.Context) ([]string, error) {
	resp, err := a.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Buckets))
	for _, bucket := range resp.Buckets {
		names = append(names, awssdk.ToString(bucket.Name))
	}
	return names, nil
}

// BucketTags returns the tag set of a bucket. A bucket without any tags is
// not an error, it yields an empty map.
func (a *Adapter) BucketTags(ctx context.Context, name string) (map[string]string, error) {
	resp, err := a.s3.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{
		Bucket: awssdk.String(name),
	})
	if isAPIErrorCode(err, "NoSuchTagSet") {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return convertS3Tags(resp.TagSet), nil
}

// BucketRegion returns the region a bucket lives in.
func (a *Adapter) BucketRegion(ctx context.Context, name string) (string, error) {
	resp, err := a.s3.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: awssdk.String(name),
	})
	if err != nil {
		return "", err
	}
	// An empty location constraint means us-east-1.
	if resp.LocationConstraint == "" {
		return "us-east-1", nil
	}
	return string(resp.LocationConstraint), nil
}

// EmptyBucket removes all current objects, then every object version and
// delete marker, and finally aborts in-flight multipart uploads. All three
// steps run even if an earlier one failed so that a later bucket deletion has
// the best possible chance.
func (a *Adapter) EmptyBucket(ctx context.Context, name string) error {
	var firstErr error

	if err := a.deleteCurrentObjects(ctx, name); err != nil {
		log.Errorf("failed to delete current objects of bucket %s: %v", name, err)
		firstErr = err
	}
	if err := a.deleteObjectVersions(ctx, name); err != nil {
		log.Errorf("failed to delete object versions of bucket %s: %v", name, err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := a.abortMultipartUploads(ctx, name); err != nil {
		log.Errorf("failed to abort multipart uploads of bucket %s: %v", name, err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *Adapter) deleteCurrentObjects(ctx context.Context, bucket string) error {
	paginator := s3.NewListObjectsV2Paginator(a.s3, &s3.ListObjectsV2Input{
		Bucket: awssdk.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}

		objects := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, s3types.ObjectIdentifier{Key: obj.Key})
		}
		if err := a.deleteObjectBatches(ctx, bucket, objects); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) deleteObjectVersions(ctx context.Context, bucket string) error {
	paginator := s3.NewListObjectVersionsPaginator(a.s3, &s3.ListObjectVersionsInput{
		Bucket: awssdk.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}

		objects := make([]s3types.ObjectIdentifier, 0, len(page.Versions)+len(page.DeleteMarkers))
		for _, version := range page.Versions {
			objects = append(objects, s3types.ObjectIdentifier{
				Key:       version.Key,
				VersionId: version.VersionId,
			})
		}
		for _, marker := range page.DeleteMarkers {
			objects = append(objects, s3types.ObjectIdentifier{
				Key:       marker.Key,
				VersionId: marker.VersionId,
			})
		}
		if err := a.deleteObjectBatches(ctx, bucket, objects); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) deleteObjectBatches(ctx context.Context, bucket string, objects []s3types.ObjectIdentifier) error {
	for start := 0; start < len(objects); start += a.deleteBatchSize {
		end := start + a.deleteBatchSize
		if end > len(objects) {
			end = len(objects)
		}
		_, err := a.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: awssdk.String(bucket),
			Delete: &s3types.Delete{
				Objects: objects[start:end],
				Quiet:   awssdk.Bool(true),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) abortMultipartUploads(ctx context.Context, bucket string) error {
	resp, err := a.s3.ListMultipartUploads(ctx, &s3.ListMultipartUploadsInput{
		Bucket: awssdk.String(bucket),
	})
	if err != nil {
		return err
	}
	for _, upload := range resp.Uploads {
		_, err := a.s3.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   awssdk.String(bucket),
			Key:      upload.Key,
			UploadId: upload.UploadId,
		})
		if err != nil {
			log.Errorf("failed to abort multipart upload %s in bucket %s: %v", awssdk.ToString(upload.UploadId), bucket, err)
		}
	}
	return nil
}

// DeleteBucket removes an empty bucket. When object versions or delete
// markers remain the returned error wraps ErrBucketNotEmpty.
func (a *Adapter) DeleteBucket(ctx context.Context, name string) error {
	_, err := a.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: awssdk.String(name),
	})
	if isAPIErrorCode(err, "BucketNotEmpty") {
		return fmt.Errorf("%w: %s", ErrBucketNotEmpty, name)
	}
	return err
}

// CreateBucket creates a versioning-enabled, tagged bucket in the adapter's
// region.
func (a *Adapter) CreateBucket(ctx context.Context, name string, tags map[string]string) error {
	input := &s3.CreateBucketInput{
		Bucket: awssdk.String(name),
	}
	// us-east-1 rejects an explicit location constraint.
	if a.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(a.region),
		}
	}
	if _, err := a.s3.CreateBucket(ctx, input); err != nil {
		return err
	}

	_, err := a.s3.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: awssdk.String(name),
		VersioningConfiguration: &s3types.VersioningConfiguration{
			Status: s3types.BucketVersioningStatusEnabled,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to enable versioning on bucket %s: %w", name, err)
	}

	if len(tags) == 0 {
		return nil
	}
	tagSet := make([]s3types.Tag, 0, len(tags))
	for key, value := range tags {
		tagSet = append(tagSet, s3types.Tag{
			Key:   awssdk.String(key),
			Value: awssdk.String(value),
		})
	}
	_, err = a.s3.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  awssdk.String(name),
		Tagging: &s3types.Tagging{TagSet: tagSet},
	})
	if err != nil {
		return fmt.Errorf("failed to tag bucket %s: %w", name, err)
	}
	return nil
}
