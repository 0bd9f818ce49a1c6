package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/classify"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/message"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/parse"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/rewards"
	"github.com/small-frappuccino/cafefarm/pkg/config"
	"github.com/small-frappuccino/cafefarm/pkg/control"
	"github.com/small-frappuccino/cafefarm/pkg/discord/dispatch"
	"github.com/small-frappuccino/cafefarm/pkg/discord/interaction"
	"github.com/small-frappuccino/cafefarm/pkg/discord/session"
	"github.com/small-frappuccino/cafefarm/pkg/errors"
	"github.com/small-frappuccino/cafefarm/pkg/farm"
	"github.com/small-frappuccino/cafefarm/pkg/log"
	"github.com/small-frappuccino/cafefarm/pkg/storage"
	"github.com/small-frappuccino/cafefarm/pkg/util"
)

// Run bootstraps the farm and blocks until shutdown.
// appName affects config/cache/log paths. Settings come from CAFE_* variables,
// with a $HOME/.local/bin/.env fallback and an optional YAML file.
func Run(appName string) error {
	started := time.Now()

	// App name first (affects paths)
	util.SetAppName(appName)

	cfg, cfgErr := config.Load()

	// Logger next so config problems are written to the log file too
	if err := log.SetupLogger(log.Options{FilePath: cfg.LogFile, Level: log.ParseLevel(cfg.LogLevel)}); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	defer log.GlobalLogger.Sync()

	if cfgErr != nil {
		if stderrors.Is(cfgErr, config.ErrMissingChannel) {
			log.ErrorLoggerRaw().Error("Please set a ChannelId and restart the program...", "env", config.EnvChannelID)
		}
		return fmt.Errorf("load config: %w", cfgErr)
	}
	for _, w := range cfg.Warnings() {
		log.ApplicationLogger().Warn(w)
	}

	log.ApplicationLogger().Info(formatStartupMessage(appName, util.AppVersion), "parser_version", parse.ProtocolVersion)

	// Discord session
	discordSession, err := session.NewDiscordSession(cfg.Token)
	if err != nil {
		if errors.IsCategory(err, errors.CategoryDiscord) {
			log.DiscordLogger().Error("Discord rejected the session; check the token", "env", config.EnvToken)
		}
		return fmt.Errorf("create discord session: %w", err)
	}
	defer discordSession.Close()
	if discordSession.State == nil || discordSession.State.User == nil {
		return fmt.Errorf("discord session state not properly initialized")
	}
	self := discordSession.State.User
	log.DiscordLogger().Info("Successfully logged in", "user", self.String(), "user_id", self.ID)
	log.ApplicationLogger().Warn("PLEASE MAKE SURE YOUR CURRENT ORDERS ARE FINISHED!")

	if cfg.Debug {
		return DumpEmbed(discordSession, cfg.ChannelID, cfg.DebugMessageID, os.Stdout)
	}

	runID := uuid.NewString()
	store, ledger := openLedger(cfg.DBPath, runID, cfg.ChannelID, started)
	if store != nil {
		defer store.Close()
	}

	handlers := farm.Handlers{
		Commands:         dispatch.Commands{BotID: cfg.BotID},
		ApplicationID:    self.ID,
		Delay:            cfg.Delay(),
		Catalog:          rewards.Catalog(cfg.Events),
		DonationBatch:    cfg.DonationBatch,
		DonationCooldown: cfg.DonationCooldown(),
	}
	f := farm.New(farm.Options{
		Handlers:  handlers,
		Filter:    classify.Filter{BotID: cfg.BotID, ChannelID: cfg.ChannelID},
		Commander: dispatch.New(discordSession, cfg.ChannelID),
		Clicker:   interaction.New(discordSession),
		Ledger:    ledger,
		RunID:     runID,
		Kickoff:   true,
	})

	// Handlers run inline so messages reach the queue in arrival order.
	discordSession.SyncEvents = true
	removeHandler := discordSession.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m == nil || m.Message == nil {
			return
		}
		f.Submit(message.FromDiscord(m.Message))
	})
	defer removeHandler()

	controlServer := control.NewServer(cfg.ControlAddr, f)
	if err := controlServer.Start(); err != nil {
		log.ApplicationLogger().Warn("Control server unavailable", "addr", cfg.ControlAddr, "err", err)
		controlServer = nil
	}
	defer func() {
		if err := controlServer.Stop(context.Background()); err != nil {
			log.ApplicationLogger().Warn("Control server did not stop cleanly", "err", err)
		}
	}()

	ctx, cancel := util.InterruptContext(context.Background())
	defer cancel()

	log.ApplicationLogger().Info(fmt.Sprintf("%s initialized in %s", appName, time.Since(started).Round(time.Millisecond)),
		"run_id", runID, "channel_id", cfg.ChannelID)
	log.ApplicationLogger().Info(fmt.Sprintf("%s running. Press Ctrl+C to stop...", appName))

	final := f.Run(ctx)

	log.ApplicationLogger().Info(fmt.Sprintf("Stopping %s...", appName), "run_id", runID)
	for _, line := range final.Counters.Lines() {
		log.ApplicationLogger().Info(line)
	}

	if store != nil {
		finishLedger(store, runID)
	}
	return nil
}

// openLedger opens the reward ledger. The farm runs without one when the
// database cannot be opened.
func openLedger(path, runID, channelID string, started time.Time) (*storage.Store, farm.Ledger) {
	store := storage.NewStore(path)
	if err := store.Init(); err != nil {
		log.DatabaseLogger().Warn("Reward ledger unavailable; continuing without it", "path", path, "err", err)
		return nil, nil
	}
	ctx := context.Background()
	if err := store.StartRun(ctx, runID, channelID, started); err != nil {
		log.DatabaseLogger().Warn("Failed to register run", "run_id", runID, "err", err)
	}
	if last, ok, err := store.GetMeta("last_started"); err == nil && ok {
		log.DatabaseLogger().Info("Previous run", "started_at", last.Local().Format(log.TimeFormat))
	}
	if err := store.SetMeta("last_started", started); err != nil {
		log.DatabaseLogger().Warn("Failed to record start time", "err", err)
	}
	if totals, err := store.LifetimeTotals(ctx); err == nil && totals.Rows > 0 {
		log.DatabaseLogger().Info("Lifetime rewards", "orders", totals.Orders,
			"summary", strings.Join(totals.Rewards.Lines(), ", "))
	}
	return store, store
}

func finishLedger(store *storage.Store, runID string) {
	ctx := context.Background()
	if err := store.FinishRun(ctx, runID, time.Now()); err != nil {
		log.DatabaseLogger().Warn("Failed to close run", "run_id", runID, "err", err)
	}
	if totals, err := store.RunTotals(ctx, runID); err == nil {
		log.DatabaseLogger().Info("Run recorded", "run_id", runID, "orders", totals.Orders, "rows", totals.Rows)
	}
}

func formatStartupMessage(appName, appVersion string) string {
	appName = strings.TrimSpace(appName)
	appVersion = strings.TrimSpace(appVersion)
	if appVersion == "" || appVersion == "dev" {
		return fmt.Sprintf("🚀 Starting %s...", appName)
	}
	return fmt.Sprintf("🚀 Starting %s %s...", appName, appVersion)
}
