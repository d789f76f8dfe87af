package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

// Instance holds the details of an EC2 instance relevant to the lab tooling.
type Instance struct {
	ID    string
	Name  string
	State string
	Tags  map[string]string
}

// KeyPair holds the details of an EC2 key pair.
type KeyPair struct {
	ID   string
	Name string
}

// SecurityGroup holds the details of a security group.
type SecurityGroup struct {
	ID   string
	Name string
}

// RunInstanceSpec describes the instance to launch for a lab.
type RunInstanceSpec struct {
	ImageID         string
	InstanceType    string
	KeyName         string
	SecurityGroupID string
	Tags            map[string]string
}

// reapableInstanceStates are the states in which an instance is considered a
// teardown candidate. Instances already terminated or shutting down are left
// alone.
var reapableInstanceStates = []string{
	string(ec2types.InstanceStateNameRunning),
	string(ec2types.InstanceStateNameStopped),
	string(ec2types.InstanceStateNameStopping),
	string(ec2types.InstanceStateNamePending),
}

// FindInstancesByTag returns all instances carrying the given tag that are in
// a reapable state.
func (a *Adapter) FindInstancesByTag(ctx context.Context, tagKey, tagValue string) ([]Instance, error) {
	params := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   awssdk.String("tag:" + tagKey),
				Values: []string{tagValue},
			},
			{
				Name:   awssdk.String("instance-state-name"),
				Values: reapableInstanceStates,
			},
		},
	}

	var instances []Instance
	paginator := ec2.NewDescribeInstancesPaginator(a.ec2, params)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				tags := convertEc2Tags(instance.Tags)
				id := awssdk.ToString(instance.InstanceId)
				instances = append(instances, Instance{
					ID:    id,
					Name:  nameFromTags(tags, id),
					State: string(instance.State.Name),
					Tags:  tags,
				})
			}
		}
	}
	return instances, nil
}

// TerminateInstance issues a termination request for a single instance.
func (a *Adapter) TerminateInstance(ctx context.Context, instanceID string) error {
	_, err := a.ec2.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{instanceID},
	})
	return err
}

// WaitForInstancesTerminated blocks until all given instances reached a
// terminal state or the timeout elapsed.
func (a *Adapter) WaitForInstancesTerminated(ctx context.Context, instanceIDs []string, timeout time.Duration) error {
	if len(instanceIDs) == 0 {
		return nil
	}
	if timeout <= 0 {
		timeout = a.terminationWaitTimeout
	}
	waiter := ec2.NewInstanceTerminatedWaiter(a.ec2)
	return waiter.Wait(ctx, &ec2.DescribeInstancesInput{InstanceIds: instanceIDs}, timeout)
}

// FindKeyPairsByPrefix returns all key pairs whose name starts with the given
// prefix. Key pairs cannot be found by tag, the naming convention is the only
// handle the lab scripts leave behind.
func (a *Adapter) FindKeyPairsByPrefix(ctx context.Context, prefix string) ([]KeyPair, error) {
	resp, err := a.ec2.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{})
	if err != nil {
		return nil, err
	}

	var keyPairs []KeyPair
	for _, kp := range resp.KeyPairs {
		name := awssdk.ToString(kp.KeyName)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		keyPairs = append(keyPairs, KeyPair{
			ID:   awssdk.ToString(kp.KeyPairId),
			Name: name,
		})
	}
	return keyPairs, nil
}

// DeleteKeyPair removes a key pair by name.
func (a *Adapter) DeleteKeyPair(ctx context.Context, name string) error {
	_, err := a.ec2.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
		KeyName: awssdk.String(name),
	})
	return err
}

// FindSecurityGroupsByTag returns all security groups carrying the given tag.
func (a *Adapter) FindSecurityGroupsByTag(ctx context.Context, tagKey, tagValue string) ([]SecurityGroup, error) {
	resp, err := a.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{
			{
				Name:   awssdk.String("tag:" + tagKey),
				Values: []string{tagValue},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	groups := make([]SecurityGroup, 0, len(resp.SecurityGroups))
	for _, sg := range resp.SecurityGroups {
		groups = append(groups, SecurityGroup{
			ID:   awssdk.ToString(sg.GroupId),
			Name: awssdk.ToString(sg.GroupName),
		})
	}
	return groups, nil
}

// DeleteSecurityGroup removes a security group by ID. When the group is still
// referenced by a live resource the returned error wraps
// ErrSecurityGroupInUse.
func (a *Adapter) DeleteSecurityGroup(ctx context.Context, groupID string) error {
	_, err := a.ec2.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: awssdk.String(groupID),
	})
	if isAPIErrorCode(err, "DependencyViolation") {
		return fmt.Errorf("%w: %s", ErrSecurityGroupInUse, groupID)
	}
	return err
}

// CreateKeyPair creates a new key pair and returns the private key material.
// The material is only available at creation time and must be persisted by
// the caller.
func (a *Adapter) CreateKeyPair(ctx context.Context, name string, tags map[string]string) (string, error) {
	resp, err := a.ec2.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{
		KeyName:           awssdk.String(name),
		TagSpecifications: ec2TagSpec(ec2types.ResourceTypeKeyPair, tags),
	})
	if err != nil {
		return "", err
	}
	return awssdk.ToString(resp.KeyMaterial), nil
}

// DefaultVPC returns the ID of the default VPC in the adapter's region.
func (a *Adapter) DefaultVPC(ctx context.Context) (string, error) {
	resp, err := a.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []ec2types.Filter{
			{
				Name:   awssdk.String("is-default"),
				Values: []string{"true"},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Vpcs) < 1 {
		return "", ErrNoDefaultVPC
	}
	return awssdk.ToString(resp.Vpcs[0].VpcId), nil
}

// CreateSecurityGroup creates a tagged security group in the given VPC with a
// single SSH ingress rule for the given CIDR.
func (a *Adapter) CreateSecurityGroup(ctx context.Context, name, description, vpcID, sshCIDR string, tags map[string]string) (string, error) {
	resp, err := a.ec2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:         awssdk.String(name),
		Description:       awssdk.String(description),
		VpcId:             awssdk.String(vpcID),
		TagSpecifications: ec2TagSpec(ec2types.ResourceTypeSecurityGroup, tags),
	})
	if err != nil {
		return "", err
	}
	groupID := awssdk.ToString(resp.GroupId)

	_, err = a.ec2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:    awssdk.String(groupID),
		IpProtocol: awssdk.String("tcp"),
		FromPort:   awssdk.Int32(22),
		ToPort:     awssdk.Int32(22),
		CidrIp:     awssdk.String(sshCIDR),
	})
	if err != nil {
		return groupID, fmt.Errorf("failed to authorize SSH ingress for %s: %w", groupID, err)
	}
	return groupID, nil
}

// LatestAmazonLinuxAMI returns the newest Amazon Linux 2023 image published
// by Amazon for x86_64.
func (a *Adapter) LatestAmazonLinuxAMI(ctx context.Context) (string, error) {
	resp, err := a.ec2.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{"amazon"},
		Filters: []ec2types.Filter{
			{
				Name:   awssdk.String("name"),
				Values: []string{"al2023-ami-2023*-x86_64"},
			},
			{
				Name:   awssdk.String("state"),
				Values: []string{"available"},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Images) < 1 {
		return "", ErrNoMatchingImage
	}

	images := resp.Images
	sort.Slice(images, func(i, j int) bool {
		return awssdk.ToString(images[i].CreationDate) > awssdk.ToString(images[j].CreationDate)
	})
	return awssdk.ToString(images[0].ImageId), nil
}

// RunInstance launches a single tagged instance and returns its details.
func (a *Adapter) RunInstance(ctx context.Context, spec RunInstanceSpec) (*Instance, error) {
	resp, err := a.ec2.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:           awssdk.String(spec.ImageID),
		InstanceType:      ec2types.InstanceType(spec.InstanceType),
		KeyName:           awssdk.String(spec.KeyName),
		SecurityGroupIds:  []string{spec.SecurityGroupID},
		MinCount:          awssdk.Int32(1),
		MaxCount:          awssdk.Int32(1),
		TagSpecifications: ec2TagSpec(ec2types.ResourceTypeInstance, spec.Tags),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Instances) < 1 {
		return nil, errors.New("instance launch returned no instances")
	}

	instance := resp.Instances[0]
	tags := convertEc2Tags(instance.Tags)
	id := awssdk.ToString(instance.InstanceId)
	return &Instance{
		ID:    id,
		Name:  nameFromTags(tags, id),
		State: string(instance.State.Name),
		Tags:  tags,
	}, nil
}

func isAPIErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == code
	}
	return false
}
