// Package discord hosts the chat surface: inbound gating, operator commands,
// and delivery of finished replies back to channels and DMs.
package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"moltbot/internal/config"
	"moltbot/internal/mind"
	"moltbot/internal/store"
)

const Surface = "discord"

// Bot owns the Discord session. It feeds qualifying inbound messages to the
// orchestrator and implements mind.Sender for the way back.
type Bot struct {
	dg        *discordgo.Session
	cfg       *config.Config
	store     *store.Store
	mood      *mind.MoodEngine
	cooldowns *mind.CooldownManager
	orch      *mind.Orchestrator
	log       zerolog.Logger

	deepChannels map[string]bool
	operators    map[string]bool
}

func NewBot(cfg *config.Config, s *store.Store, mood *mind.MoodEngine, cooldowns *mind.CooldownManager, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		dg:           dg,
		cfg:          cfg,
		store:        s,
		mood:         mood,
		cooldowns:    cooldowns,
		log:          log.With().Str("component", "discord").Logger(),
		deepChannels: make(map[string]bool, len(cfg.DeepChannels)),
		operators:    make(map[string]bool, len(cfg.OperatorIDs)),
	}
	for _, id := range cfg.DeepChannels {
		b.deepChannels[strings.TrimSpace(id)] = true
	}
	for _, id := range cfg.OperatorIDs {
		b.operators[strings.TrimSpace(id)] = true
	}
	return b, nil
}

// SetOrchestrator wires the pipeline in after construction; the orchestrator
// needs the bot as its Sender, so neither can be built first whole.
func (b *Bot) SetOrchestrator(o *mind.Orchestrator) {
	b.orch = o
}

// Run opens the session and blocks until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.log.Info().Str("user", s.State.User.Username).Msg("discord session ready")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)

	if strings.HasPrefix(content, "!") && b.operators[m.Author.ID] {
		b.handleOperatorCommand(m, content)
		return
	}

	dm := m.GuildID == ""
	if !dm && !b.deepChannels[m.ChannelID] && !mentionsUser(m, s.State.User.ID) {
		return
	}

	content = stripMention(content, s.State.User.ID)
	for _, a := range m.Attachments {
		if strings.HasPrefix(a.ContentType, "image/") {
			content += fmt.Sprintf("\n[Image attached: %s (%s)]", a.Filename, a.URL)
		}
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	key := "ch:" + m.ChannelID
	if dm {
		key = "dm:" + m.Author.ID
	}

	go b.orch.Handle(context.Background(), mind.Request{
		Key:     key,
		Surface: Surface,
		Deep:    dm || b.deepChannels[m.ChannelID],
		Inbound: store.HistoryEntry{
			Role:     mind.RoleUser,
			Content:  content,
			AuthorID: m.Author.Username,
		},
	})
}

func mentionsUser(m *discordgo.MessageCreate, userID string) bool {
	for _, u := range m.Mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// stripMention removes the bot's own mention tokens from the message text.
func stripMention(content, userID string) string {
	content = strings.ReplaceAll(content, "<@"+userID+">", "")
	content = strings.ReplaceAll(content, "<@!"+userID+">", "")
	return strings.TrimSpace(content)
}
