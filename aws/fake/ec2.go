package fake

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

type EC2Outputs struct {
	DescribeInstances             *APIResponse
	TerminateInstances            *APIResponse
	RunInstances                  *APIResponse
	DescribeKeyPairs              *APIResponse
	CreateKeyPair                 *APIResponse
	DeleteKeyPair                 *APIResponse
	DescribeSecurityGroups        *APIResponse
	CreateSecurityGroup           *APIResponse
	AuthorizeSecurityGroupIngress *APIResponse
	DeleteSecurityGroup           *APIResponse
	DescribeVpcs                  *APIResponse
	DescribeImages                *APIResponse
}

// EC2Client returns canned outputs and records every mutating input so tests
// can assert on what was (or was not) issued.
type EC2Client struct {
	Outputs EC2Outputs

	TerminatedInstanceIDs   []string
	DeletedKeyPairNames     []string
	DeletedSecurityGroupIDs []string
}

func (m *EC2Client) DescribeInstances(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	out, ok := m.Outputs.DescribeInstances.response.(*ec2.DescribeInstancesOutput)
	if !ok {
		return nil, m.Outputs.DescribeInstances.err
	}
	return out, m.Outputs.DescribeInstances.err
}

func (m *EC2Client) TerminateInstances(_ context.Context, params *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	m.TerminatedInstanceIDs = append(m.TerminatedInstanceIDs, params.InstanceIds...)
	out, ok := m.Outputs.TerminateInstances.response.(*ec2.TerminateInstancesOutput)
	if !ok {
		return nil, m.Outputs.TerminateInstances.err
	}
	return out, m.Outputs.TerminateInstances.err
}

func (m *EC2Client) RunInstances(context.Context, *ec2.RunInstancesInput, ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	out, ok := m.Outputs.RunInstances.response.(*ec2.RunInstancesOutput)
	if !ok {
		return nil, m.Outputs.RunInstances.err
	}
	return out, m.Outputs.RunInstances.err
}

func (m *EC2Client) DescribeKeyPairs(context.Context, *ec2.DescribeKeyPairsInput, ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error) {
	out, ok := m.Outputs.DescribeKeyPairs.response.(*ec2.DescribeKeyPairsOutput)
	if !ok {
		return nil, m.Outputs.DescribeKeyPairs.err
	}
	return out, m.Outputs.DescribeKeyPairs.err
}

func (m *EC2Client) CreateKeyPair(context.Context, *ec2.CreateKeyPairInput, ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error) {
	out, ok := m.Outputs.CreateKeyPair.response.(*ec2.CreateKeyPairOutput)
	if !ok {
		return nil, m.Outputs.CreateKeyPair.err
	}
	return out, m.Outputs.CreateKeyPair.err
}

func (m *EC2Client) DeleteKeyPair(_ context.Context, params *ec2.DeleteKeyPairInput, _ ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error) {
	m.DeletedKeyPairNames = append(m.DeletedKeyPairNames, awssdk.ToString(params.KeyName))
	out, ok := m.Outputs.DeleteKeyPair.response.(*ec2.DeleteKeyPairOutput)
	if !ok {
		return nil, m.Outputs.DeleteKeyPair.err
	}
	return out, m.Outputs.DeleteKeyPair.err
}

func (m *EC2Client) DescribeSecurityGroups(context.Context, *ec2.DescribeSecurityGroupsInput, ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	out, ok := m.Outputs.DescribeSecurityGroups.response.(*ec2.DescribeSecurityGroupsOutput)
	if !ok {
		return nil, m.Outputs.DescribeSecurityGroups.err
	}
	return out, m.Outputs.DescribeSecurityGroups.err
}

func (m *EC2Client) CreateSecurityGroup(context.Context, *ec2.CreateSecurityGroupInput, ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	out, ok := m.Outputs.CreateSecurityGroup.response.(*ec2.CreateSecurityGroupOutput)
	if !ok {
		return nil, m.Outputs.CreateSecurityGroup.err
	}
	return out, m.Outputs.CreateSecurityGroup.err
}

func (m *EC2Client) AuthorizeSecurityGroupIngress(context.Context, *ec2.AuthorizeSecurityGroupIngressInput, ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	out, ok := m.Outputs.AuthorizeSecurityGroupIngress.response.(*ec2.AuthorizeSecurityGroupIngressOutput)
	if !ok {
		return nil, m.Outputs.AuthorizeSecurityGroupIngress.err
	}
	return out, m.Outputs.AuthorizeSecurityGroupIngress.err
}

func (m *EC2Client) DeleteSecurityGroup(_ context.Context, params *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	m.DeletedSecurityGroupIDs = append(m.DeletedSecurityGroupIDs, awssdk.ToString(params.GroupId))
	out, ok := m.Outputs.DeleteSecurityGroup.response.(*ec2.DeleteSecurityGroupOutput)
	if !ok {
		return nil, m.Outputs.DeleteSecurityGroup.err
	}
	return out, m.Outputs.DeleteSecurityGroup.err
}

func (m *EC2Client) DescribeVpcs(context.Context, *ec2.DescribeVpcsInput, ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	out, ok := m.Outputs.DescribeVpcs.response.(*ec2.DescribeVpcsOutput)
	if !ok {
		return nil, m.Outputs.DescribeVpcs.err
	}
	return out, m.Outputs.DescribeVpcs.err
}

func (m *EC2Client) DescribeImages(context.Context, *ec2.DescribeImagesInput, ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	out, ok := m.Outputs.DescribeImages.response.(*ec2.DescribeImagesOutput)
	if !ok {
		return nil, m.Outputs.DescribeImages.err
	}
	return out, m.Outputs.DescribeImages.err
}

type TestInstance struct {
	ID    string
	Tags  Tags
	State types.InstanceStateName
}

func MockDescribeInstancesOutput(mockedInstances ...TestInstance) *ec2.DescribeInstancesOutput {
	instances := make([]types.Instance, 0, len(mockedInstances))
	for _, i := range mockedInstances {
		tags := make([]types.Tag, 0, len(i.Tags))
		for k, v := range i.Tags {
			tags = append(tags, types.Tag{Key: awssdk.String(k), Value: awssdk.String(v)})
		}
		instances = append(instances, types.Instance{
			InstanceId: awssdk.String(i.ID),
			Tags:       tags,
			State:      &types.InstanceState{Name: i.State},
		})
	}
	return &ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{{Instances: instances}},
	}
}

func MockDescribeKeyPairsOutput(names ...string) *ec2.DescribeKeyPairsOutput {
	keyPairs := make([]types.KeyPairInfo, 0, len(names))
	for i, name := range names {
		keyPairs = append(keyPairs, types.KeyPairInfo{
			KeyPairId: awssdk.String(keyPairID(i)),
			KeyName:   awssdk.String(name),
		})
	}
	return &ec2.DescribeKeyPairsOutput{KeyPairs: keyPairs}
}

func keyPairID(i int) string {
	return "key-" + string(rune('a'+i))
}

func MockDescribeSecurityGroupsOutput(sgs map[string]string) *ec2.DescribeSecurityGroupsOutput {
	groups := make([]types.SecurityGroup, 0, len(sgs))
	for id, name := range sgs {
		groups = append(groups, types.SecurityGroup{
			GroupId:   awssdk.String(id),
			GroupName: awssdk.String(name),
		})
	}
	return &ec2.DescribeSecurityGroupsOutput{SecurityGroups: groups}
}
