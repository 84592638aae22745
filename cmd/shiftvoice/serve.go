package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kotoba-labs/shiftvoice/internal/config"
	"github.com/kotoba-labs/shiftvoice/internal/log"
	"github.com/kotoba-labs/shiftvoice/pkg/agent"
	"github.com/kotoba-labs/shiftvoice/pkg/dispatch"
	"github.com/kotoba-labs/shiftvoice/pkg/schedule"
	"github.com/kotoba-labs/shiftvoice/pkg/store"
	"github.com/kotoba-labs/shiftvoice/pkg/web"
)

func newServeCmd() *cobra.Command {
	var noAgent bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the agent session and the calendar dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if noAgent {
				err = cfg.Validate()
			} else {
				err = cfg.ValidateSession()
			}
			if err != nil {
				return err
			}
			return runServe(cfg, noAgent)
		},
	}

	cmd.Flags().BoolVar(&noAgent, "no-agent", false, "serve the dashboard without connecting an agent session")
	return cmd
}

func runServe(cfg *config.Config, noAgent bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(store.Config{
		Dir:       filepath.Join(cfg.DataDir, config.DefaultCacheDirName),
		RemoteURL: cfg.Dataset.RemoteURL,
		ExportDir: filepath.Join(cfg.DataDir, config.DefaultExportDirName),
		HotTTL:    cfg.Dataset.HotTTL,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	server := web.NewServer(cfg.ListenAddr, st)
	dispatcher := dispatch.New(st, schedule.NewResolver(cfg.DefaultPerson), server)

	// Dashboard edits travel the same path as agent calls.
	server.OnToolCall = func(call agent.ToolCall) []agent.ToolResponse {
		return dispatcher.Handle(ctx, []agent.ToolCall{call})
	}

	if !noAgent {
		sessCfg := agent.DefaultConfig().
			WithAPIKey(cfg.GoogleAPIKey).
			WithSystemPrompt(agent.SystemPrompt(cfg.Agent.Language, cfg.DefaultPerson))
		if cfg.Agent.Model != "" {
			sessCfg = sessCfg.WithModel(cfg.Agent.Model)
		}
		if cfg.Agent.Voice != "" {
			sessCfg = sessCfg.WithVoice(cfg.Agent.Voice)
		}

		sess, err := agent.NewSession(sessCfg)
		if err != nil {
			return err
		}
		sess.OnToolCalls(func(batch []agent.ToolCall) {
			responses := dispatcher.Handle(ctx, batch)
			if err := sess.SubmitResponses(responses); err != nil {
				log.Error("failed to submit tool responses", "error", err)
			}
		})
		sess.OnError(func(err error) {
			log.Error("agent session error", "error", err)
		})

		if err := sess.Start(ctx); err != nil {
			return err
		}
		defer sess.Stop()
	}

	server.StartAsync()
	defer server.Shutdown()

	log.Info("shiftvoice running", "listen", cfg.ListenAddr, "agent", !noAgent)
	<-ctx.Done()
	log.Info("shutting down")
	return nil
}
