package discord

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const maxMessageLen = 2000

// Send delivers a finished reply to the conversation behind key, chunking
// text over the message length limit and attaching any generated images to
// the first chunk.
func (b *Bot) Send(_ context.Context, key, text string, images [][]byte) error {
	channelID, err := b.channelFor(key)
	if err != nil {
		return err
	}

	for i, chunk := range splitMessage(text, maxMessageLen) {
		msg := &discordgo.MessageSend{Content: chunk}
		if i == 0 {
			for j, img := range images {
				msg.Files = append(msg.Files, &discordgo.File{
					Name:        fmt.Sprintf("image-%d.png", j+1),
					ContentType: "image/png",
					Reader:      bytes.NewReader(img),
				})
			}
		}
		if _, err := b.dg.ChannelMessageSendComplex(channelID, msg); err != nil {
			return fmt.Errorf("send chunk %d: %w", i+1, err)
		}
	}
	return nil
}

func (b *Bot) channelFor(key string) (string, error) {
	if id, ok := strings.CutPrefix(key, "dm:"); ok {
		ch, err := b.dg.UserChannelCreate(id)
		if err != nil {
			return "", fmt.Errorf("open dm channel: %w", err)
		}
		return ch.ID, nil
	}
	if id, ok := strings.CutPrefix(key, "ch:"); ok {
		return id, nil
	}
	return "", fmt.Errorf("unknown conversation key %q", key)
}

// splitMessage breaks text into chunks of at most limit characters,
// preferring paragraph breaks, then line breaks, then spaces.
func splitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := -1
		for _, sep := range []string{"\n\n", "\n", " "} {
			if idx := strings.LastIndex(text[:limit], sep); idx > limit/2 {
				cut = idx
				break
			}
		}
		if cut < 0 {
			cut = limit
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
