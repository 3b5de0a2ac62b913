package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moltbot/internal/ai"
	"moltbot/internal/bluesky"
	"moltbot/internal/config"
	"moltbot/internal/discord"
	"moltbot/internal/logging"
	"moltbot/internal/mind"
	"moltbot/internal/moltbook"
	"moltbot/internal/search"
	"moltbot/internal/store"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.New()
	if err != nil {
		boot := logging.New(logging.Options{Console: true})
		boot.Fatal().Err(err).Msg("config")
	}

	log := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: true,
	})
	log.Info().Msg("starting moltbot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.New(cfg.StoragePath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	provider, err := ai.New(cfg.AIProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("text provider")
	}

	persona, err := os.ReadFile(cfg.PersonaPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.PersonaPath).Msg("no persona file, running without one")
	}

	searchers := map[string]search.Client{
		mind.ToolWikiLookup: search.NewWikipediaClient(),
	}
	if cfg.TavilyAPIKey != "" {
		searchers[mind.ToolWebSearch] = search.NewTavilyClient(cfg.TavilyAPIKey)
	}

	bsky := bluesky.New(cfg.BlueskyHost, cfg.BlueskyIdentifier, cfg.BlueskyPassword)
	molt := moltbook.New(cfg.MoltbookHost, cfg.MoltbookAPIKey)

	mood := mind.NewMoodEngine(st)
	cooldowns := mind.NewCooldownManager(st, cfg.SurfaceCooldowns())
	interrupts := mind.NewInterruptController()
	planner := mind.NewPlanner(provider, st, mood, log)
	executor := mind.NewExecutor(provider, ai.NewPollinationsImage(), searchers, bsky, molt, st, mood, cooldowns, log)
	drafts := mind.NewDraftGenerator(provider, st, log)

	bot, err := discord.NewBot(cfg, st, mood, cooldowns, log)
	if err != nil {
		log.Fatal().Err(err).Msg("discord bot")
	}
	bot.SetOrchestrator(mind.NewOrchestrator(
		st, interrupts, planner, executor, drafts, mood, bot, string(persona), log,
	))

	go mind.NewSweeper(st, cooldowns, bsky, molt, sweepInterval, log).Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot exited")
		}
		cancel()
	}

	log.Info().Msg("moltbot exited cleanly")
}
