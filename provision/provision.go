// Package provision creates the standard lab setup for a project: an SSH key
// pair, a security group in the default VPC, one Amazon Linux instance and a
// versioned S3 bucket, all stamped with the project tag so the teardown can
// find them again.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/labsweep/labsweep/aws"
)

// Provider is the subset of the AWS adapter needed for provisioning.
type Provider interface {
	CreateKeyPair(ctx context.Context, name string, tags map[string]string) (string, error)
	DefaultVPC(ctx context.Context) (string, error)
	CreateSecurityGroup(ctx context.Context, name, description, vpcID, sshCIDR string, tags map[string]string) (string, error)
	LatestAmazonLinuxAMI(ctx context.Context) (string, error)
	RunInstance(ctx context.Context, spec aws.RunInstanceSpec) (*aws.Instance, error)
	CreateBucket(ctx context.Context, name string, tags map[string]string) error
}

const (
	// DefaultInstanceType is small enough to stay inside free tier limits.
	DefaultInstanceType = "t3.micro"
	// DefaultSSHCIDR opens SSH to the world, acceptable for throwaway lab
	// instances.
	DefaultSSHCIDR = "0.0.0.0/0"
)

// Config carries the provisioning parameters.
type Config struct {
	Project      string
	TagKey       string
	Region       string
	InstanceType string
	SSHCIDR      string
	KeysDir      string
	InfoDir      string
}

func (c *Config) applyDefaults() {
	if c.InstanceType == "" {
		c.InstanceType = DefaultInstanceType
	}
	if c.SSHCIDR == "" {
		c.SSHCIDR = DefaultSSHCIDR
	}
}

// Result describes everything a provisioning run created.
type Result struct {
	KeyName    string
	KeyFile    string
	GroupID    string
	InstanceID string
	Bucket     string
	InfoFile   string
}

// Provision creates the lab resources in dependency order. Unlike teardown
// it is fail fast: a failed step aborts the run and the resources created so
// far are left for a later cleanup to collect.
func Provision(ctx context.Context, provider Provider, cfg Config) (*Result, error) {
	cfg.applyDefaults()
	tags := map[string]string{
		cfg.TagKey: cfg.Project,
		"Name":     cfg.Project,
	}

	keyName := cfg.Project + "-key"
	material, err := provider.CreateKeyPair(ctx, keyName, tags)
	if err != nil {
		return nil, fmt.Errorf("failed to create key pair: %w", err)
	}
	keyFile, err := writeKeyFile(cfg.KeysDir, keyName, material)
	if err != nil {
		return nil, err
	}
	log.Infof("created key pair %s, private key saved to %s", keyName, keyFile)

	vpcID, err := provider.DefaultVPC(ctx)
	if err != nil {
		return nil, err
	}

	groupName := cfg.Project + "-sg"
	groupID, err := provider.CreateSecurityGroup(ctx, groupName, "lab SSH access for "+cfg.Project, vpcID, cfg.SSHCIDR, tags)
	if err != nil {
		return nil, fmt.Errorf("failed to create security group: %w", err)
	}
	log.Infof("created security group %s (%s) in VPC %s", groupName, groupID, vpcID)

	imageID, err := provider.LatestAmazonLinuxAMI(ctx)
	if err != nil {
		return nil, err
	}
	instance, err := provider.RunInstance(ctx, aws.RunInstanceSpec{
		ImageID:         imageID,
		InstanceType:    cfg.InstanceType,
		KeyName:         keyName,
		SecurityGroupID: groupID,
		Tags:            tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch instance: %w", err)
	}
	log.Infof("launched instance %s from image %s", instance.ID, imageID)

	bucket := bucketName(cfg.Project)
	if err := provider.CreateBucket(ctx, bucket, tags); err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	log.Infof("created versioned bucket %s", bucket)

	result := &Result{
		KeyName:    keyName,
		KeyFile:    keyFile,
		GroupID:    groupID,
		InstanceID: instance.ID,
		Bucket:     bucket,
	}
	infoFile, err := writeInfoFile(cfg, result)
	if err != nil {
		return nil, err
	}
	result.InfoFile = infoFile
	return result, nil
}

// bucketName appends a random fragment because bucket names are global.
func bucketName(project string) string {
	return project + "-lab-" + strings.Split(uuid.NewString(), "-")[0]
}

func writeKeyFile(dir, keyName, material string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create key directory: %w", err)
	}
	path := filepath.Join(dir, keyName+".pem")
	if err := os.WriteFile(path, []byte(material), 0o600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}
	return path, nil
}

func writeInfoFile(cfg Config, result *Result) (string, error) {
	if err := os.MkdirAll(cfg.InfoDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create info directory: %w", err)
	}
	path := filepath.Join(cfg.InfoDir, cfg.Project+"-info.txt")
	content := fmt.Sprintf(
		"project: %s\nregion: %s\ncreated: %s\nkey-pair: %s\nkey-file: %s\nsecurity-group: %s\ninstance: %s\nbucket: %s\n",
		cfg.Project, cfg.Region, time.Now().UTC().Format(time.RFC3339),
		result.KeyName, result.KeyFile, result.GroupID, result.InstanceID, result.Bucket,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write info file: %w", err)
	}
	return path, nil
}
