package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/abcbank/voxteller/pkg/agent"
	"github.com/abcbank/voxteller/pkg/agent/tool/banking"
	"github.com/abcbank/voxteller/pkg/cli/config"
	httpctrl "github.com/abcbank/voxteller/pkg/controller/http"
	"github.com/abcbank/voxteller/pkg/service/dataset"
	"github.com/abcbank/voxteller/pkg/usecase"
	"github.com/abcbank/voxteller/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var speechCfg config.Speech
	var agentCfg config.Agent

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("VOXTELLER_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, speechCfg.Flags()...)
	flags = append(flags, agentCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure model client")
			}

			// Seed the agent behavior configuration if a file was given
			if seed, err := agentCfg.Load(); err != nil {
				return goerr.Wrap(err, "failed to load agent config seed")
			} else if seed != nil {
				if err := repo.Config().Put(ctx, seed); err != nil {
					return goerr.Wrap(err, "failed to store agent config seed")
				}
				logging.Default().Info("Agent configuration seeded", "env_key", seed.EnvKey)
			}

			registry := agent.NewRegistry(banking.New(dataset.NewSeeded())...)
			engine := agent.New(llmClient, registry)

			promRegistry := prometheus.NewRegistry()
			promRegistry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			ucOpts := []usecase.Option{
				usecase.WithEnvKey(agentCfg.EnvKey()),
				usecase.WithMetricsRegistry(promRegistry),
			}
			if t := speechCfg.Transcriber(); t != nil {
				ucOpts = append(ucOpts, usecase.WithTranscriber(t))
				logging.Default().Info("Speech-to-text enabled")
			} else {
				logging.Default().Info("Groq API key not configured, audio input disabled")
			}
			if s := speechCfg.Synthesizer(); s != nil {
				ucOpts = append(ucOpts, usecase.WithSynthesizer(s))
				logging.Default().Info("Text-to-speech enabled")
			} else {
				logging.Default().Info("Deepgram API key not configured, audio output disabled")
			}

			uc := usecase.New(repo, engine, ucOpts...)

			handler := httpctrl.New(uc,
				httpctrl.WithMetricsHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
