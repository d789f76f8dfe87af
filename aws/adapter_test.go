package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labsweep/labsweep/aws/fake"
)

func TestResolveRegion(t *testing.T) {
	t.Run("explicit-wins", func(t *testing.T) {
		t.Setenv("AWS_REGION", "us-west-2")
		assert.Equal(t, "ap-southeast-2", ResolveRegion(context.Background(), "ap-southeast-2"))
	})

	t.Run("aws-region-env", func(t *testing.T) {
		t.Setenv("AWS_REGION", "us-west-2")
		assert.Equal(t, "us-west-2", ResolveRegion(context.Background(), ""))
	})

	t.Run("aws-default-region-env", func(t *testing.T) {
		t.Setenv("AWS_REGION", "")
		t.Setenv("AWS_DEFAULT_REGION", "eu-west-1")
		assert.Equal(t, "eu-west-1", ResolveRegion(context.Background(), ""))
	})
}

func TestVerifyCredentials(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		a := NewAdapterFromClients(&fake.EC2Client{}, &fake.S3Client{}, &fake.STSClient{Outputs: fake.STSOutputs{
			GetCallerIdentity: fake.R(&sts.GetCallerIdentityOutput{
				Account: awssdk.String("123456789012"),
				Arn:     awssdk.String("arn:aws:iam::123456789012:user/lab"),
				UserId:  awssdk.String("AIDAEXAMPLE"),
			}, nil),
		}}, DefaultRegion)

		got, err := a.VerifyCredentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "123456789012", got.Account)
		assert.Equal(t, "arn:aws:iam::123456789012:user/lab", got.ARN)
	})

	t.Run("invalid", func(t *testing.T) {
		a := NewAdapterFromClients(&fake.EC2Client{}, &fake.S3Client{}, &fake.STSClient{Outputs: fake.STSOutputs{
			GetCallerIdentity: fake.R(nil, fake.ErrDummy),
		}}, DefaultRegion)

		_, err := a.VerifyCredentials(context.Background())
		require.Error(t, err)
	})
}

func TestWithTerminationWaitTimeout(t *testing.T) {
	a := NewAdapterFromClients(&fake.EC2Client{}, &fake.S3Client{}, &fake.STSClient{}, DefaultRegion)
	assert.Equal(t, DefaultTerminationWaitTimeout, a.terminationWaitTimeout)

	a = a.WithTerminationWaitTimeout(0)
	assert.Equal(t, DefaultTerminationWaitTimeout, a.terminationWaitTimeout)

	a = a.WithTerminationWaitTimeout(42)
	assert.Equal(t, int64(42), int64(a.terminationWaitTimeout))
}
