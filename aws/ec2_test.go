package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labsweep/labsweep/aws/fake"
)

func ec2Adapter(client *fake.EC2Client) *Adapter {
	return NewAdapterFromClients(client, &fake.S3Client{}, &fake.STSClient{}, DefaultRegion)
}

func TestFindInstancesByTag(t *testing.T) {
	for _, test := range []struct {
		name      string
		responses fake.EC2Outputs
		want      []Instance
		wantError bool
	}{
		{
			name: "success",
			responses: fake.EC2Outputs{
				DescribeInstances: fake.R(fake.MockDescribeInstancesOutput(
					fake.TestInstance{
						ID:    "i-1",
						Tags:  fake.Tags{"Project": "demo", "Name": "demo-node"},
						State: ec2types.InstanceStateNameRunning,
					},
				), nil),
			},
			want: []Instance{
				{
					ID:    "i-1",
					Name:  "demo-node",
					State: "running",
					Tags:  map[string]string{"Project": "demo", "Name": "demo-node"},
				},
			},
		},
		{
			name: "name-falls-back-to-id",
			responses: fake.EC2Outputs{
				DescribeInstances: fake.R(fake.MockDescribeInstancesOutput(
					fake.TestInstance{
						ID:    "i-2",
						Tags:  fake.Tags{"Project": "demo"},
						State: ec2types.InstanceStateNameStopped,
					},
				), nil),
			},
			want: []Instance{
				{
					ID:    "i-2",
					Name:  "i-2",
					State: "stopped",
					Tags:  map[string]string{"Project": "demo"},
				},
			},
		},
		{
			name: "api-error",
			responses: fake.EC2Outputs{
				DescribeInstances: fake.R(nil, fake.ErrDummy),
			},
			wantError: true,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			a := ec2Adapter(&fake.EC2Client{Outputs: test.responses})
			got, err := a.FindInstancesByTag(context.Background(), "Project", "demo")
			if test.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("unexpected instances (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTerminateInstance(t *testing.T) {
	client := &fake.EC2Client{Outputs: fake.EC2Outputs{
		TerminateInstances: fake.R(&ec2.TerminateInstancesOutput{}, nil),
	}}
	a := ec2Adapter(client)

	require.NoError(t, a.TerminateInstance(context.Background(), "i-1"))
	assert.Equal(t, []string{"i-1"}, client.TerminatedInstanceIDs)
}

func TestFindKeyPairsByPrefix(t *testing.T) {
	for _, test := range []struct {
		name      string
		responses fake.EC2Outputs
		prefix    string
		want      []string
		wantError bool
	}{
		{
			name: "filters-by-prefix",
			responses: fake.EC2Outputs{
				DescribeKeyPairs: fake.R(fake.MockDescribeKeyPairsOutput("demo-key", "other-key", "demo-backup"), nil),
			},
			prefix: "demo-",
			want:   []string{"demo-key", "demo-backup"},
		},
		{
			name: "no-match",
			responses: fake.EC2Outputs{
				DescribeKeyPairs: fake.R(fake.MockDescribeKeyPairsOutput("other-key"), nil),
			},
			prefix: "demo-",
			want:   []string{},
		},
		{
			name: "api-error",
			responses: fake.EC2Outputs{
				DescribeKeyPairs: fake.R(nil, fake.ErrDummy),
			},
			prefix:    "demo-",
			wantError: true,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			a := ec2Adapter(&fake.EC2Client{Outputs: test.responses})
			got, err := a.FindKeyPairsByPrefix(context.Background(), test.prefix)
			if test.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, kp := range got {
				names = append(names, kp.Name)
			}
			assert.Equal(t, test.want, names)
		})
	}
}

func TestDeleteSecurityGroup(t *testing.T) {
	for _, test := range []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name: "success",
		},
		{
			name:    "dependency-violation-is-in-use",
			err:     &smithy.GenericAPIError{Code: "DependencyViolation", Message: "has a dependent object"},
			wantErr: ErrSecurityGroupInUse,
		},
		{
			name:    "other-error-passed-through",
			err:     fake.ErrDummy,
			wantErr: fake.ErrDummy,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			client := &fake.EC2Client{Outputs: fake.EC2Outputs{
				DeleteSecurityGroup: fake.R(&ec2.DeleteSecurityGroupOutput{}, test.err),
			}}
			a := ec2Adapter(client)

			err := a.DeleteSecurityGroup(context.Background(), "sg-1")
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"sg-1"}, client.DeletedSecurityGroupIDs)
		})
	}
}

func TestDefaultVPC(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		a := ec2Adapter(&fake.EC2Client{Outputs: fake.EC2Outputs{
			DescribeVpcs: fake.R(&ec2.DescribeVpcsOutput{
				Vpcs: []ec2types.Vpc{{VpcId: awssdk.String("vpc-1")}},
			}, nil),
		}})
		got, err := a.DefaultVPC(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "vpc-1", got)
	})

	t.Run("missing", func(t *testing.T) {
		a := ec2Adapter(&fake.EC2Client{Outputs: fake.EC2Outputs{
			DescribeVpcs: fake.R(&ec2.DescribeVpcsOutput{}, nil),
		}})
		_, err := a.DefaultVPC(context.Background())
		require.ErrorIs(t, err, ErrNoDefaultVPC)
	})
}

func TestLatestAmazonLinuxAMI(t *testing.T) {
	t.Run("picks-newest", func(t *testing.T) {
		a := ec2Adapter(&fake.EC2Client{Outputs: fake.EC2Outputs{
			DescribeImages: fake.R(&ec2.DescribeImagesOutput{
				Images: []ec2types.Image{
					{ImageId: awssdk.String("ami-old"), CreationDate: awssdk.String("2024-01-01T00:00:00.000Z")},
					{ImageId: awssdk.String("ami-new"), CreationDate: awssdk.String("2025-06-01T00:00:00.000Z")},
					{ImageId: awssdk.String("ami-mid"), CreationDate: awssdk.String("2024-09-01T00:00:00.000Z")},
				},
			}, nil),
		}})
		got, err := a.LatestAmazonLinuxAMI(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ami-new", got)
	})

	t.Run("none-available", func(t *testing.T) {
		a := ec2Adapter(&fake.EC2Client{Outputs: fake.EC2Outputs{
			DescribeImages: fake.R(&ec2.DescribeImagesOutput{}, nil),
		}})
		_, err := a.LatestAmazonLinuxAMI(context.Background())
		require.ErrorIs(t, err, ErrNoMatchingImage)
	})
}

func TestCreateSecurityGroup(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		a := ec2Adapter(&fake.EC2Client{Outputs: fake.EC2Outputs{
			CreateSecurityGroup:           fake.R(&ec2.CreateSecurityGroupOutput{GroupId: awssdk.String("sg-1")}, nil),
			AuthorizeSecurityGroupIngress: fake.R(&ec2.AuthorizeSecurityGroupIngressOutput{}, nil),
		}})
		got, err := a.CreateSecurityGroup(context.Background(), "demo-sg", "demo", "vpc-1", "0.0.0.0/0", fake.Tags{"Project": "demo"})
		require.NoError(t, err)
		assert.Equal(t, "sg-1", got)
	})

	t.Run("ingress-failure", func(t *testing.T) {
		a := ec2Adapter(&fake.EC2Client{Outputs: fake.EC2Outputs{
			CreateSecurityGroup:           fake.R(&ec2.CreateSecurityGroupOutput{GroupId: awssdk.String("sg-1")}, nil),
			AuthorizeSecurityGroupIngress: fake.R(nil, fake.ErrDummy),
		}})
		got, err := a.CreateSecurityGroup(context.Background(), "demo-sg", "demo", "vpc-1", "0.0.0.0/0", nil)
		require.Error(t, err)
		// The group ID is still returned so the caller can clean it up.
		assert.Equal(t, "sg-1", got)
	})
}

func TestRunInstance(t *testing.T) {
	a := ec2Adapter(&fake.EC2Client{Outputs: fake.EC2Outputs{
		RunInstances: fake.R(&ec2.RunInstancesOutput{
			Instances: []ec2types.Instance{
				{
					InstanceId: awssdk.String("i-1"),
					State:      &ec2types.InstanceState{Name: ec2types.InstanceStateNamePending},
					Tags: []ec2types.Tag{
						{Key: awssdk.String("Name"), Value: awssdk.String("demo")},
					},
				},
			},
		}, nil),
	}})
	got, err := a.RunInstance(context.Background(), RunInstanceSpec{
		ImageID:         "ami-1",
		InstanceType:    "t3.micro",
		KeyName:         "demo-key",
		SecurityGroupID: "sg-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "i-1", got.ID)
	assert.Equal(t, "demo", got.Name)
	assert.Equal(t, "pending", got.State)
}
