package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/agent/declarative"
	"github.com/BaSui01/swarmflow/agent/messages"
	"github.com/BaSui01/swarmflow/agent/participants"
	"github.com/BaSui01/swarmflow/agent/persistence"
	"github.com/BaSui01/swarmflow/agent/swarm"
	"github.com/BaSui01/swarmflow/agent/termination"
	"github.com/BaSui01/swarmflow/config"
	"github.com/BaSui01/swarmflow/internal/metrics"
	"github.com/BaSui01/swarmflow/internal/server"
	"github.com/BaSui01/swarmflow/internal/telemetry"
)

// =============================================================================
// ✅ validate 命令
// =============================================================================

func runValidate(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	teamPath := fs.String("team", "", "Path to team definition")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *teamPath == "" {
		return errors.New("--team is required")
	}

	def, err := declarative.NewYAMLLoader().LoadFile(*teamPath)
	if err != nil {
		return err
	}
	registry, err := newComponentRegistry(zap.NewNop())
	if err != nil {
		return err
	}
	team, err := swarm.FromDefinition(def, registry)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "team %s is valid\n", team.Name())
	for i, name := range team.Participants() {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s\n", marker, name)
	}
	return nil
}

// =============================================================================
// ▶️ run 命令
// =============================================================================

func runRun(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	teamPath := fs.String("team", "", "Path to team definition")
	conversationID := fs.String("conversation", "", "Conversation ID (generated when empty)")
	task := fs.String("task", "", "Task text")
	sender := fs.String("sender", "user", "Sender of the task message")
	handoffTo := fs.String("handoff-to", "", "Send the task as a handoff to this participant")
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address (overrides metrics.addr)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *teamPath == "" {
		return errors.New("--team is required")
	}
	if *conversationID == "" {
		*conversationID = uuid.NewString()
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化 OpenTelemetry
	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	store, err := persistence.NewStateStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	opts := []swarm.TeamOption{
		swarm.WithLogger(logger),
		swarm.WithTracerProvider(providers.TracerProvider()),
		swarm.WithCheckpointStore(store, *conversationID),
		swarm.WithEventSink(func(_ context.Context, event swarm.Event) {
			if e, ok := event.(swarm.SpeakerSelectedEvent); ok {
				logger.Info("speaker selected",
					zap.String("speaker", e.Speaker),
					zap.Int("turn", e.Turn),
					zap.Bool("handoff", e.Handoff),
				)
			}
		}),
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = *metricsAddr
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		opts = append(opts, swarm.WithMetrics(metrics.NewCollectorWithRegistry(cfg.Metrics.Namespace, reg, logger)))
		if cfg.Metrics.Addr != "" {
			serverCfg := server.DefaultConfig()
			serverCfg.Addr = cfg.Metrics.Addr
			metricsServer := server.NewMetricsManager(reg, serverCfg, logger)
			if err := metricsServer.Start(); err != nil {
				return err
			}
			defer metricsServer.Shutdown(context.Background())
		}
	}

	team, err := loadTeam(*teamPath, cfg.Team, logger, opts...)
	if err != nil {
		return err
	}

	resumed, err := resume(ctx, team, store, *conversationID)
	if err != nil {
		return err
	}

	var taskMessages []messages.Message
	switch {
	case *handoffTo != "":
		taskMessages = append(taskMessages, messages.NewHandoffMessage(*sender, *handoffTo, *task))
	case *task != "":
		taskMessages = append(taskMessages, messages.NewTextMessage(*sender, *task))
	case !resumed:
		return errors.New("--task is required when starting a new conversation")
	}

	if cfg.Team.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Team.RunTimeout)
		defer cancel()
	}

	logger.Info("running team",
		zap.String("team", team.Name()),
		zap.String("conversation_id", *conversationID),
		zap.Bool("resumed", resumed),
	)
	result, err := team.Run(ctx, taskMessages...)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "conversation: %s\n", *conversationID)
	for _, msg := range result.Messages {
		fmt.Fprintln(w, formatMessage(msg))
	}
	fmt.Fprintf(w, "stopped: %s\n", result.StopReason)
	fmt.Fprintf(w, "next speaker: %s\n", team.CurrentSpeaker())
	return nil
}

// resume restores the saved state of conversationID when one exists.
func resume(ctx context.Context, team *swarm.Team, store persistence.StateStore, conversationID string) (bool, error) {
	err := team.LoadFrom(ctx, store, conversationID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func formatMessage(msg messages.Message) string {
	if h, ok := messages.AsHandoff(msg); ok {
		return fmt.Sprintf("[%s] %s -> %s: %s", msg.Kind(), h.Source, h.Target, h.Content)
	}
	return fmt.Sprintf("[%s] %s: %s", msg.Kind(), msg.Sender(), msg.Text())
}

// =============================================================================
// 💾 state 命令
// =============================================================================

func runState(args []string, w io.Writer) error {
	if len(args) == 0 {
		return errors.New("state requires a subcommand: show, list, delete")
	}
	sub := args[0]

	fs := flag.NewFlagSet("state "+sub, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	conversationID := fs.String("conversation", "", "Conversation ID")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	store, err := persistence.NewStateStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	switch sub {
	case "list":
		ids, err := store.ListStates(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		return nil
	case "show":
		if *conversationID == "" {
			return errors.New("--conversation is required")
		}
		data, err := store.LoadState(ctx, *conversationID)
		if err != nil {
			return err
		}
		state, err := swarm.DecodeManagerState(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "speaker: %s\nturn: %d\nmessages: %d\n", state.CurrentSpeaker, state.CurrentTurn, len(state.MessageThread))
		fmt.Fprintln(w, string(data))
		return nil
	case "delete":
		if *conversationID == "" {
			return errors.New("--conversation is required")
		}
		return store.DeleteState(ctx, *conversationID)
	default:
		return fmt.Errorf("unknown state subcommand %q", sub)
	}
}

// =============================================================================
// 🔧 装配
// =============================================================================

func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newComponentRegistry(logger *zap.Logger) (*declarative.ComponentRegistry, error) {
	registry := declarative.NewComponentRegistry(logger)
	if err := participants.Register(registry); err != nil {
		return nil, err
	}
	if err := termination.Register(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

// loadTeam builds the team in path. Config defaults apply only where the
// document is silent.
func loadTeam(path string, defaults config.TeamConfig, logger *zap.Logger, opts ...swarm.TeamOption) (*swarm.Team, error) {
	def, err := declarative.NewYAMLLoader().LoadFile(path)
	if err != nil {
		return nil, err
	}
	if def.MaxTurns == nil && defaults.MaxTurns > 0 {
		maxTurns := defaults.MaxTurns
		def.MaxTurns = &maxTurns
	}
	if defaults.EmitTeamEvents {
		def.EmitTeamEvents = true
	}

	registry, err := newComponentRegistry(logger)
	if err != nil {
		return nil, err
	}
	return swarm.FromDefinition(def, registry, opts...)
}
