package main

import (
	"context"
	"os"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/sirupsen/logrus"

	"github.com/labsweep/labsweep/audit"
	"github.com/labsweep/labsweep/aws"
	"github.com/labsweep/labsweep/provision"
	"github.com/labsweep/labsweep/reaper"
)

var version = "unknown"

const defaultLogsDir = "output/logs"

type settings struct {
	configFile     string
	project        string
	region         string
	tagKey         string
	keysDir        string
	infoDir        string
	logsDir        string
	metricsAddress string
	debug          bool

	// cleanup only
	dryRun bool
	force  bool

	// create only
	instanceType string
	sshCIDR      string
}

func loadSettings() (string, *settings) {
	s := &settings{}

	app := kingpin.New("labsweep", "Provisions throwaway AWS lab environments and sweeps them away again by project tag.")
	app.Version(version)
	app.Flag("config", "Optional YAML config file. Flags take precedence over file values.").StringVar(&s.configFile)
	app.Flag("project", "Project name used as tag value and resource name prefix.").StringVar(&s.project)
	app.Flag("region", "AWS region. Defaults to $AWS_REGION, then EC2 instance metadata.").StringVar(&s.region)
	app.Flag("tag-key", "Tag key that marks resources as owned by a project. Defaults to "+reaper.DefaultTagKey+".").StringVar(&s.tagKey)
	app.Flag("keys-dir", "Directory holding downloaded private keys.").StringVar(&s.keysDir)
	app.Flag("info-dir", "Directory holding per-project info files.").StringVar(&s.infoDir)
	app.Flag("logs-dir", "Directory for audit logs.").StringVar(&s.logsDir)
	app.Flag("metrics-address", "Address to serve Prometheus metrics on, e.g. :7979. Disabled when empty.").StringVar(&s.metricsAddress)
	app.Flag("debug", "Enable debug logging.").BoolVar(&s.debug)

	create := app.Command("create", "Create the lab resources for a project.")
	create.Flag("instance-type", "EC2 instance type.").Default(provision.DefaultInstanceType).StringVar(&s.instanceType)
	create.Flag("ssh-cidr", "CIDR allowed to connect via SSH.").Default(provision.DefaultSSHCIDR).StringVar(&s.sshCIDR)

	cleanup := app.Command("cleanup", "Tear down all resources of a project.")
	cleanup.Flag("dry-run", "Report what would be deleted without deleting anything.").BoolVar(&s.dryRun)
	cleanup.Flag("force", "Skip the confirmation prompt.").BoolVar(&s.force)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if s.configFile != "" {
		fileCfg, err := readConfigFile(s.configFile)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fileCfg.merge(s)
	}
	if s.project == "" {
		app.Fatalf("required flag --project not provided")
	}
	if s.tagKey == "" {
		s.tagKey = reaper.DefaultTagKey
	}
	if s.keysDir == "" {
		s.keysDir = reaper.DefaultKeysDir
	}
	if s.infoDir == "" {
		s.infoDir = reaper.DefaultInfoDir
	}
	if s.logsDir == "" {
		s.logsDir = defaultLogsDir
	}
	if s.debug {
		log.SetLevel(log.DebugLevel)
	}
	return command, s
}

func main() {
	command, s := loadSettings()
	ctx := context.Background()

	region := aws.ResolveRegion(ctx, s.region)
	adapter, err := aws.NewAdapter(ctx, region)
	if err != nil {
		log.Fatalf("failed to initialize AWS adapter: %v", err)
	}
	identity, err := adapter.VerifyCredentials(ctx)
	if err != nil {
		log.Fatalf("AWS credentials check failed: %v. Configure credentials via environment, shared config or an instance profile.", err)
	}
	log.Infof("labsweep %s, account %s, region %s", version, identity.Account, region)

	m := newMetrics()
	if s.metricsAddress != "" {
		go m.serve(s.metricsAddress)
	}

	switch command {
	case "create":
		runCreate(ctx, adapter, s, region)
	case "cleanup":
		runCleanup(ctx, adapter, m, s, region, identity.Account)
	}
}

func runCreate(ctx context.Context, adapter *aws.Adapter, s *settings, region string) {
	result, err := provision.Provision(ctx, adapter, provision.Config{
		Project:      s.project,
		TagKey:       s.tagKey,
		Region:       region,
		InstanceType: s.instanceType,
		SSHCIDR:      s.sshCIDR,
		KeysDir:      s.keysDir,
		InfoDir:      s.infoDir,
	})
	if err != nil {
		log.Fatalf("provisioning failed: %v. Run cleanup to collect partially created resources.", err)
	}
	log.Infof("lab ready: instance %s, key %s, bucket %s, details in %s",
		result.InstanceID, result.KeyFile, result.Bucket, result.InfoFile)
}

func runCleanup(ctx context.Context, adapter *aws.Adapter, m *metrics, s *settings, region, account string) {
	if !s.dryRun && !s.force {
		prompt := "About to delete all resources tagged " + s.tagKey + "=" + s.project +
			" in account " + account + ", region " + region + "."
		if !confirm(os.Stdin, os.Stderr, prompt) {
			log.Info("cleanup not confirmed, nothing deleted")
			return
		}
	}

	var reporter reaper.Reporter
	auditLog, err := audit.New(s.logsDir, s.project)
	if err != nil {
		// The run is still worth doing without an audit trail.
		log.Errorf("audit log unavailable: %v", err)
	} else {
		defer auditLog.Close()
		reporter = auditLog
		log.Infof("audit run %s", auditLog.RunID())
	}

	engine := reaper.New(adapter, reporter, reaper.Config{
		Project: s.project,
		TagKey:  s.tagKey,
		Region:  region,
		DryRun:  s.dryRun,
		KeysDir: s.keysDir,
		InfoDir: s.infoDir,
	})
	outcomes := engine.Reap(ctx)

	for _, outcome := range outcomes {
		m.resourcesTotal.observe(outcome)
	}
	m.lastRunTimestamp.SetToCurrentTime()

	for kind, counts := range reaper.Summarize(outcomes) {
		log.Infof("%s: %d planned, %d deleted, %d skipped, %d failed",
			kind, counts.Planned, counts.Deleted, counts.Skipped, counts.Failed)
	}
	if len(outcomes) == 0 {
		log.Infof("no resources found for project %q", s.project)
	}
	for _, p := range engine.Problems().Summary() {
		log.Warn(p)
	}
}
