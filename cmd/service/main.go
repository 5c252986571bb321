package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/soodoh/openfit/internal"
	"github.com/soodoh/openfit/internal/catalog"
	"github.com/soodoh/openfit/internal/config"
	"github.com/soodoh/openfit/internal/logging"
	"github.com/soodoh/openfit/pkg"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logCloser := logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        cfg.SentryDSN,
		SentryServerName: "openfit-service",
	})
	log.Warnf("---->> running in [%s] environment, store: %s", cfg.Environment, cfg.StoreBackend)

	if cfg.RedisPassword == "" {
		log.Warnln("redis password not set. use OPENFIT_REDIS_PASS")
	}
	if cfg.HoneycombEnabled && os.Getenv("HONEYCOMB_API_KEY") == "" {
		log.Warnln("HONEYCOMB_API_KEY env var not set")
	}

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:      cfg,
		VersionInfo: versionInfo,
	})
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	if cfg.CatalogSeed != "" {
		if err := seedCatalog(ctx, server.CatalogService(), cfg.CatalogSeed); err != nil {
			log.Errorf("seed catalog: %s", err)
		}
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)
	cancel()

	server.GracefulShutdown()
	if logCloser != nil {
		_ = logCloser.Close()
	}
}

func seedCatalog(ctx context.Context, service *catalog.Service, path string) error {
	exists, err := pkg.PathExists(path, false)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("seed file %s not found", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	seed, err := catalog.ParseSeed(f)
	if err != nil {
		return err
	}
	stats, err := service.Seed(ctx, seed)
	if err != nil {
		return err
	}
	log.Infof("catalog seeded from %s: %+v", path, stats)
	return nil
}

// tryGetLastCommitHash assumes the binary runs from the repo root.
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pkg.BytesToString(stdout)), nil
}
