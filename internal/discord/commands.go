package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// handleOperatorCommand dispatches the "!" commands available to operator
// accounts. Unknown commands get a usage reply instead of silence so typos
// are visible.
func (b *Bot) handleOperatorCommand(m *discordgo.MessageCreate, content string) {
	fields := strings.Fields(content)
	cmd, args := fields[0], fields[1:]

	var reply string
	switch cmd {
	case "!mood":
		reply = b.cmdMood()
	case "!directives":
		reply = b.cmdDirectives()
	case "!approve":
		reply = b.cmdApprove(args)
	case "!reject":
		reply = b.cmdReject(args)
	case "!edit":
		reply = b.cmdEdit(args)
	case "!cooldown":
		reply = b.cmdCooldown(args)
	case "!scheduled":
		reply = b.cmdScheduled()
	default:
		reply = "Commands: !mood, !directives, !approve <id>, !reject <id>, !edit <id> <text>, !cooldown <surface> <minutes>, !scheduled"
	}

	b.reply(m.ChannelID, reply)
}

func (b *Bot) cmdMood() string {
	mood := b.mood.Current()
	return fmt.Sprintf("Mood: %s (valence %.2f, arousal %.2f, stability %.2f, updated %s)",
		mood.Label, mood.Valence, mood.Arousal, mood.Stability,
		mood.LastUpdate.Format(time.RFC3339))
}

func (b *Bot) cmdDirectives() string {
	pending := b.store.PendingDirectives()
	if len(pending) == 0 {
		return "No pending directives."
	}

	var sb strings.Builder
	sb.WriteString("Pending directives:\n")
	for _, d := range pending {
		platform := d.Platform
		if platform == "" {
			platform = "all"
		}
		fmt.Fprintf(&sb, "`%s` [%s/%s] %s\n", d.ID, d.Type, platform, d.Instruction)
	}
	return sb.String()
}

func (b *Bot) cmdApprove(args []string) string {
	if len(args) != 1 {
		return "Usage: !approve <id>"
	}
	if err := b.store.ApproveDirective(args[0]); err != nil {
		return "Approve failed: " + err.Error()
	}
	return "Approved " + args[0] + ", now part of the standing instructions."
}

func (b *Bot) cmdReject(args []string) string {
	if len(args) != 1 {
		return "Usage: !reject <id>"
	}
	if err := b.store.RejectDirective(args[0]); err != nil {
		return "Reject failed: " + err.Error()
	}
	return "Rejected " + args[0] + "."
}

func (b *Bot) cmdEdit(args []string) string {
	if len(args) < 2 {
		return "Usage: !edit <id> <new instruction text>"
	}
	if err := b.store.EditDirective(args[0], strings.Join(args[1:], " ")); err != nil {
		return "Edit failed: " + err.Error()
	}
	return "Edited " + args[0] + ", still pending approval."
}

func (b *Bot) cmdCooldown(args []string) string {
	if len(args) != 2 {
		return "Usage: !cooldown <surface> <minutes>"
	}
	minutes, err := strconv.Atoi(args[1])
	if err != nil || minutes < 0 {
		return "Minutes must be a non-negative integer."
	}
	surface := strings.ToLower(args[0])
	b.cooldowns.SetCooldown(surface, time.Duration(minutes)*time.Minute)
	return fmt.Sprintf("Cooldown for %s is now %d minutes.", surface, minutes)
}

func (b *Bot) cmdScheduled() string {
	posts := b.store.ScheduledPosts()
	if len(posts) == 0 {
		return "No scheduled posts."
	}

	var sb strings.Builder
	sb.WriteString("Scheduled posts:\n")
	for _, p := range posts {
		fmt.Fprintf(&sb, "`%s` [%s] at %s: %s\n",
			p.ID, p.Surface, p.ScheduledAt.Format(time.RFC3339), truncate(p.Content, 120))
	}
	return sb.String()
}

func (b *Bot) reply(channelID, text string) {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if _, err := b.dg.ChannelMessageSend(channelID, chunk); err != nil {
			b.log.Warn().Err(err).Msg("operator reply failed")
			return
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
