package reaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/labsweep/labsweep/aws"
	"github.com/labsweep/labsweep/problem"
)

// Provider is the subset of the AWS adapter the engine needs. The discovery
// calls are also used in dry-run mode; the mutating calls are only issued
// when dry-run is off.
type Provider interface {
	FindInstancesByTag(ctx context.Context, tagKey, tagValue string) ([]aws.Instance, error)
	TerminateInstance(ctx context.Context, instanceID string) error
	WaitForInstancesTerminated(ctx context.Context, instanceIDs []string, timeout time.Duration) error
	FindKeyPairsByPrefix(ctx context.Context, prefix string) ([]aws.KeyPair, error)
	DeleteKeyPair(ctx context.Context, name string) error
	FindSecurityGroupsByTag(ctx context.Context, tagKey, tagValue string) ([]aws.SecurityGroup, error)
	DeleteSecurityGroup(ctx context.Context, groupID string) error
	ListBuckets(ctx context.Context) ([]string, error)
	BucketTags(ctx context.Context, name string) (map[string]string, error)
	BucketRegion(ctx context.Context, name string) (string, error)
	EmptyBucket(ctx context.Context, name string) error
	DeleteBucket(ctx context.Context, name string) error
}

// Reporter records every outcome as it is produced. Implementations must not
// fail the run.
type Reporter interface {
	Record(Outcome)
}

// Config carries all run parameters. There is no process-wide state; two
// engines with different configs are independent.
type Config struct {
	Project string
	TagKey  string
	Region  string
	DryRun  bool

	// KeysDir and InfoDir hold the local artifacts the lab scripts leave
	// behind.
	KeysDir string
	InfoDir string

	WaitTimeout time.Duration
}

const (
	// DefaultTagKey is the tag key the lab tooling stamps on every resource
	// it creates.
	DefaultTagKey = "Project"

	DefaultKeysDir = "output/keys"
	DefaultInfoDir = "output/info"
)

func (c *Config) applyDefaults() {
	if c.TagKey == "" {
		c.TagKey = DefaultTagKey
	}
	if c.KeysDir == "" {
		c.KeysDir = DefaultKeysDir
	}
	if c.InfoDir == "" {
		c.InfoDir = DefaultInfoDir
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = aws.DefaultTerminationWaitTimeout
	}
}

// namePrefix is the naming convention shared by key pairs, buckets and local
// artifacts created for a project.
func (c *Config) namePrefix() string {
	return c.Project + "-"
}

// Engine tears down all resources of a project, best effort: no failure on
// one resource or kind prevents the remaining work.
type Engine struct {
	provider Provider
	reporter Reporter
	cfg      Config
	problems *problem.List
}

// New returns an Engine for the given provider and config. The reporter may
// be nil.
func New(provider Provider, reporter Reporter, cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{
		provider: provider,
		reporter: reporter,
		cfg:      cfg,
		problems: &problem.List{},
	}
}

// Problems returns run-level problems (failed discovery queries and the
// like) that are not attributable to a single resource.
func (e *Engine) Problems() *problem.List {
	return e.problems
}

// Reap runs the teardown in a fixed kind order: instances first (security
// groups cannot be deleted while attached instances exist), then key pairs,
// security groups, buckets and finally local artifacts. The returned
// outcomes cover every resource that matched discovery.
func (e *Engine) Reap(ctx context.Context) []Outcome {
	if e.cfg.DryRun {
		log.Infof("dry-run: planning teardown of project %q in %s", e.cfg.Project, e.cfg.Region)
	} else {
		log.Infof("tearing down project %q in %s", e.cfg.Project, e.cfg.Region)
	}

	var outcomes []Outcome
	outcomes = append(outcomes, e.reapInstances(ctx)...)
	outcomes = append(outcomes, e.reapKeyPairs(ctx)...)
	outcomes = append(outcomes, e.reapSecurityGroups(ctx)...)
	outcomes = append(outcomes, e.reapBuckets(ctx)...)
	outcomes = append(outcomes, e.sweepLocalArtifacts()...)
	return outcomes
}

func (e *Engine) record(outcomes []Outcome, outcome Outcome) []Outcome {
	switch outcome.Status {
	case StatusFailed:
		log.Errorf("%s: %s", outcome.Ref, outcome.Reason)
	case StatusSkipped:
		log.Infof("%s skipped: %s", outcome.Ref, outcome.Reason)
	default:
		log.Infof("%s %s", outcome.Ref, outcome.Status)
	}
	if e.reporter != nil {
		e.reporter.Record(outcome)
	}
	return append(outcomes, outcome)
}

func (e *Engine) reapInstances(ctx context.Context) []Outcome {
	instances, err := e.provider.FindInstancesByTag(ctx, e.cfg.TagKey, e.cfg.Project)
	if err != nil {
		e.problems.Add("instance discovery failed: %v", err)
		log.Errorf("instance discovery failed: %v", err)
		return nil
	}

	var outcomes []Outcome
	var issued []string
	for _, instance := range instances {
		ref := ResourceRef{Kind: KindInstance, ID: instance.ID, Name: instance.Name}
		if e.cfg.DryRun {
			outcomes = e.record(outcomes, planned(ref))
			continue
		}
		if err := e.provider.TerminateInstance(ctx, instance.ID); err != nil {
			outcomes = e.record(outcomes, failed(ref, err))
			continue
		}
		issued = append(issued, instance.ID)
	}

	if len(issued) == 0 {
		return outcomes
	}

	// All terminations were issued above; the outcome of each issued
	// instance depends on whether the terminal state was reached in time.
	waitErr := e.provider.WaitForInstancesTerminated(ctx, issued, e.cfg.WaitTimeout)
	for _, instance := range instances {
		if !contains(issued, instance.ID) {
			continue
		}
		ref := ResourceRef{Kind: KindInstance, ID: instance.ID, Name: instance.Name}
		if waitErr != nil {
			outcomes = e.record(outcomes, failed(ref, fmt.Errorf("timeout waiting for termination: %v", waitErr)))
		} else {
			outcomes = e.record(outcomes, deleted(ref))
		}
	}
	return outcomes
}

func (e *Engine) reapKeyPairs(ctx context.Context) []Outcome {
	keyPairs, err := e.provider.FindKeyPairsByPrefix(ctx, e.cfg.namePrefix())
	if err != nil {
		e.problems.Add("key pair discovery failed: %v", err)
		log.Errorf("key pair discovery failed: %v", err)
		return nil
	}

	var outcomes []Outcome
	for _, keyPair := range keyPairs {
		ref := ResourceRef{Kind: KindKeyPair, ID: keyPair.ID, Name: keyPair.Name}
		if e.cfg.DryRun {
			outcomes = e.record(outcomes, planned(ref))
			continue
		}
		if err := e.provider.DeleteKeyPair(ctx, keyPair.Name); err != nil {
			outcomes = e.record(outcomes, failed(ref, err))
			continue
		}
		outcomes = e.record(outcomes, deleted(ref))
		e.removeKeyFile(keyPair.Name)
	}
	return outcomes
}

func (e *Engine) reapSecurityGroups(ctx context.Context) []Outcome {
	groups, err := e.provider.FindSecurityGroupsByTag(ctx, e.cfg.TagKey, e.cfg.Project)
	if err != nil {
		e.problems.Add("security group discovery failed: %v", err)
		log.Errorf("security group discovery failed: %v", err)
		return nil
	}

	var outcomes []Outcome
	for _, group := range groups {
		ref := ResourceRef{Kind: KindSecurityGroup, ID: group.ID, Name: group.Name}
		if e.cfg.DryRun {
			outcomes = e.record(outcomes, planned(ref))
			continue
		}
		if err := e.provider.DeleteSecurityGroup(ctx, group.ID); err != nil {
			if errors.Is(err, aws.ErrSecurityGroupInUse) {
				// Expected while a terminating instance still references
				// the group; the next run collects it.
				e.problems.Add("security group %s still in use", group.ID)
			}
			outcomes = e.record(outcomes, failed(ref, err))
			continue
		}
		outcomes = e.record(outcomes, deleted(ref))
	}
	return outcomes
}

func (e *Engine) bucketMatcher() Matcher {
	return AnyMatcher{
		TagMatcher{Key: e.cfg.TagKey, Value: e.cfg.Project},
		PrefixMatcher{Prefix: e.cfg.namePrefix()},
	}
}

func (e *Engine) reapBuckets(ctx context.Context) []Outcome {
	names, err := e.provider.ListBuckets(ctx)
	if err != nil {
		e.problems.Add("bucket discovery failed: %v", err)
		log.Errorf("bucket discovery failed: %v", err)
		return nil
	}

	matcher := e.bucketMatcher()
	var outcomes []Outcome
	for _, name := range names {
		tags, err := e.provider.BucketTags(ctx, name)
		if err != nil {
			// Fall back to name matching only.
			log.Errorf("failed to read tags of bucket %s: %v", name, err)
			tags = map[string]string{}
		}
		if !matcher.Matches(name, tags) {
			continue
		}

		ref := ResourceRef{Kind: KindBucket, ID: name, Name: name}
		region, err := e.provider.BucketRegion(ctx, name)
		if err != nil {
			outcomes = e.record(outcomes, failed(ref, fmt.Errorf("failed to resolve bucket region: %v", err)))
			continue
		}
		if region != e.cfg.Region {
			outcomes = e.record(outcomes, skipped(ref, fmt.Sprintf("located in region %s", region)))
			continue
		}
		if e.cfg.DryRun {
			outcomes = e.record(outcomes, planned(ref))
			continue
		}

		// Emptying is best effort so that the bucket deletion below is
		// always attempted.
		if err := e.provider.EmptyBucket(ctx, name); err != nil {
			e.problems.Add("emptying bucket %s failed: %v", name, err)
		}
		if err := e.provider.DeleteBucket(ctx, name); err != nil {
			outcomes = e.record(outcomes, failed(ref, err))
			continue
		}
		outcomes = e.record(outcomes, deleted(ref))
	}
	return outcomes
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
