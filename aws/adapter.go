package aws

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/linki/instrumented_http"
	log "github.com/sirupsen/logrus"
)

// An Adapter can be used to orchestrate and obtain information from Amazon Web Services.
type Adapter struct {
	ec2 EC2API
	s3  S3API
	sts STSAPI

	region                 string
	terminationWaitTimeout time.Duration
	deleteBatchSize        int
}

// EC2API is the subset of the EC2 client used by the adapter.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	DescribeKeyPairs(ctx context.Context, params *ec2.DescribeKeyPairsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error)
	CreateKeyPair(ctx context.Context, params *ec2.CreateKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error)
	DeleteKeyPair(ctx context.Context, params *ec2.DeleteKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	DeleteSecurityGroup(ctx context.Context, params *ec2.DeleteSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
}

// S3API is the subset of the S3 client used by the adapter.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	ListObjectVersions(ctx context.Context, params *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListMultipartUploads(ctx context.Context, params *s3.ListMultipartUploadsInput, optFns ...func(*s3.Options)) (*s3.ListMultipartUploadsOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketVersioning(ctx context.Context, params *s3.PutBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error)
	PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
}

// STSAPI is the subset of the STS client used by the adapter.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

const (
	// DefaultRegion is used when neither the flag, the environment nor the
	// instance metadata yield a region.
	DefaultRegion = "eu-central-1"
	// DefaultTerminationWaitTimeout bounds the wait for instances to reach a
	// terminal state after termination was issued.
	DefaultTerminationWaitTimeout = 5 * time.Minute

	// S3 DeleteObjects accepts at most 1000 keys per request.
	defaultDeleteBatchSize = 1000

	imdsTimeout = 2 * time.Second

	nameTag = "Name"
)

var (
	// ErrSecurityGroupInUse is used to signal that a security group is still
	// referenced by a live resource and cannot be deleted yet.
	ErrSecurityGroupInUse = errors.New("security group is in use")
	// ErrBucketNotEmpty is used to signal that a bucket still holds object
	// versions or delete markers.
	ErrBucketNotEmpty = errors.New("bucket is not empty")
	// ErrNoDefaultVPC is used to signal that the account has no default VPC in
	// the selected region.
	ErrNoDefaultVPC = errors.New("no default VPC found")
	// ErrNoMatchingImage is used to signal that no machine image matched the
	// lab image filters.
	ErrNoMatchingImage = errors.New("no matching machine image found")
)

// NewAdapter returns a new Adapter bound to the given region. The AWS SDK
// configuration is loaded from the environment and shared config files.
func NewAdapter(ctx context.Context, region string) (*Adapter, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithRetryMaxAttempts(3),
		config.WithHTTPClient(instrumented_http.NewClient(nil, nil)),
	)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		ec2:                    ec2.NewFromConfig(cfg),
		s3:                     s3.NewFromConfig(cfg),
		sts:                    sts.NewFromConfig(cfg),
		region:                 region,
		terminationWaitTimeout: DefaultTerminationWaitTimeout,
		deleteBatchSize:        defaultDeleteBatchSize,
	}, nil
}

// NewAdapterFromClients returns an Adapter backed by already constructed
// clients. Mainly useful for tests.
func NewAdapterFromClients(ec2Client EC2API, s3Client S3API, stsClient STSAPI, region string) *Adapter {
	return &Adapter{
		ec2:                    ec2Client,
		s3:                     s3Client,
		sts:                    stsClient,
		region:                 region,
		terminationWaitTimeout: DefaultTerminationWaitTimeout,
		deleteBatchSize:        defaultDeleteBatchSize,
	}
}

// WithTerminationWaitTimeout returns the receiver adapter after changing the
// bounded wait used after instance termination.
func (a *Adapter) WithTerminationWaitTimeout(timeout time.Duration) *Adapter {
	if timeout > 0 {
		a.terminationWaitTimeout = timeout
	}
	return a
}

// Region returns the region the adapter operates in.
func (a *Adapter) Region() string {
	return a.region
}

// ResolveRegion determines the region to operate in: an explicit value wins,
// then the usual environment variables, then the EC2 instance metadata
// service, and finally DefaultRegion.
func ResolveRegion(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, env := range []string{"AWS_REGION", "AWS_DEFAULT_REGION"} {
		if r := os.Getenv(env); r != "" {
			return r
		}
	}
	if r := regionFromMetadata(ctx); r != "" {
		return r
	}
	return DefaultRegion
}

func regionFromMetadata(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, imdsTimeout)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return ""
	}
	out, err := imds.NewFromConfig(cfg).GetRegion(ctx, &imds.GetRegionInput{})
	if err != nil {
		log.Debugf("not running on EC2 or metadata unavailable: %v", err)
		return ""
	}
	return out.Region
}
