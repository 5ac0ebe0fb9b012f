package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"gangplank/internal/artifact"
	"gangplank/internal/config"
	"gangplank/internal/feed"
	"gangplank/internal/pipeline"
	"gangplank/internal/provider"
)

func main() {
	log.SetFlags(0)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	client, err := buildClient(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	opts := pipeline.Options{
		RepoPath:      cfg.RepoPath,
		OutDir:        cfg.OutDir,
		Project:       cfg.Project,
		SkipInference: cfg.SkipInference,
		Observers:     []pipeline.Observer{printProgress},
	}

	if cfg.ProgressAddr != "" {
		srv := feed.NewServer()
		opts.Observers = append(opts.Observers, srv.Observer())
		go func() {
			log.Printf("progress feed listening on %s", cfg.ProgressAddr)
			if err := http.ListenAndServe(cfg.ProgressAddr, srv.Handler()); err != nil {
				log.Printf("progress feed stopped: %v", err)
			}
		}()
	}

	if cfg.S3.Enabled() {
		pub, err := artifact.NewS3Publisher(cfg.S3)
		if err != nil {
			log.Fatal(err)
		}
		opts.Publisher = pub
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := pipeline.New(client, opts)
	res, err := eng.Run(ctx)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	log.Printf("run %s complete, artifacts in %s", res.RunID, cfg.OutDir)
	if res.Published {
		log.Printf("artifacts published to s3://%s", cfg.S3.Bucket)
	}
	if !res.InferenceUsed {
		log.Print("note: generated with deterministic fallbacks only")
	}
}

func buildClient(cfg *config.Config) (provider.Client, error) {
	switch cfg.Provider {
	case config.ProviderLocal:
		return provider.NewLocal(provider.LocalOptions{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
		}), nil
	case config.ProviderCloud:
		return provider.NewCloud(provider.CloudOptions{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
		})
	case config.ProviderAgent:
		return provider.NewAgent(provider.AgentOptions{
			Command: cfg.AgentArgv(),
			Model:   cfg.Model,
		}), nil
	}
	return nil, errors.Errorf("unknown provider kind %q", cfg.Provider)
}

func printProgress(p pipeline.Progress) {
	switch p.Status {
	case pipeline.StatusRunning:
		if p.Detail == "" {
			log.Printf("[%5.1f%%] %d/%d %s", p.Percent, p.StepNumber, p.TotalSteps, p.StepName)
		} else {
			log.Printf("[%5.1f%%] %d/%d %s: %s", p.Percent, p.StepNumber, p.TotalSteps, p.StepName, p.Detail)
		}
	case pipeline.StatusCompleted:
		log.Printf("[%5.1f%%] %d/%d %s done", p.Percent, p.StepNumber, p.TotalSteps, p.StepName)
	case pipeline.StatusFailed:
		log.Printf("[%5.1f%%] %d/%d %s failed: %s", p.Percent, p.StepNumber, p.TotalSteps, p.StepName, p.Detail)
	}
}
