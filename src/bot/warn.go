package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	shareddata "github.com/civitasrp/civitas/src/data"
	"github.com/civitasrp/civitas/src/permissions"
	"github.com/civitasrp/civitas/src/session"
)

func (b *Bot) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]
	switch sub.Name {
	case "add":
		b.warnAdd(s, i, t, sub)
	case "list":
		b.warnList(s, i, t, sub)
	case "clear":
		b.warnClear(s, i, t, sub)
	}
}

func (b *Bot) warnAdd(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !b.requireCapability(s, i, t, permissions.CapWarn) {
		return
	}

	opts := optionMap(sub.Options)
	b.addWarning(t, i.GuildID, opts["usuario"].UserValue(s).ID, invokerID(i), opts["razon"].StringValue())
}

// addWarning records the warning and announces it on whichever transport the
// command arrived through.
func (b *Bot) addWarning(t Turn, guildID, targetID, moderatorID, reason string) {
	w, err := b.warnings.Add(b.ctx, guildID, targetID, moderatorID, reason)
	if err != nil {
		log.Printf("Warning add failed: %v", err)
		t.ReplyEphemeral("No se pudo registrar la advertencia, inténtalo más tarde.")
		return
	}

	b.publishModerationEvent(guildID, "warn", targetID, moderatorID, reason)
	t.Reply(fmt.Sprintf("%s fue advertido (`%s`): %s", mention(targetID), w.RefCode, reason))
}

func (b *Bot) warnList(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !b.requireCapability(s, i, t, permissions.CapWarn) {
		return
	}

	b.replyWarnList(t, i.GuildID, optionMap(sub.Options)["usuario"].UserValue(s).ID)
}

func (b *Bot) replyWarnList(t Turn, guildID, targetID string) {
	list, err := b.warnings.List(b.ctx, guildID, targetID)
	if err != nil {
		log.Printf("Warning list failed: %v", err)
		t.ReplyEphemeral("No se pudieron consultar las advertencias, inténtalo más tarde.")
		return
	}
	if len(list) == 0 {
		t.ReplyEphemeral(fmt.Sprintf("%s no tiene advertencias.", mention(targetID)))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Advertencias de %s (%d):\n", mention(targetID), len(list))
	for _, w := range list {
		fmt.Fprintf(&sb, "- `%s` %s — %s (por %s)\n",
			w.RefCode, w.CreatedAt.Format("02/01/2006"), w.Reason, mention(w.ModeratorID))
	}
	t.ReplyEphemeral(sb.String())
}

// warnClear is confirm-gated: the wipe only happens on an explicit confirm
// from the moderator who opened it, inside the expiry window.
func (b *Bot) warnClear(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !b.requireCapability(s, i, t, permissions.CapWarn) {
		return
	}

	target := optionMap(sub.Options)["usuario"].UserValue(s)
	moderatorID := invokerID(i)

	sess, err := b.sessions.Start(session.Spec{
		Key:       fmt.Sprintf("warn:clear:%s:%s", i.GuildID, target.ID),
		OwnerID:   moderatorID,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		TTL:       confirmTTL,
		Stages:    []session.Stage{{Name: "confirm", Confirm: true}},
		Commit: func(ctx context.Context, _ map[string]string) error {
			n, err := b.warnings.ClearAll(ctx, i.GuildID, target.ID)
			if err != nil {
				return err
			}
			b.publishModerationEvent(i.GuildID, "warn_clear", target.ID, moderatorID,
				fmt.Sprintf("%d advertencias eliminadas", n))
			return nil
		},
	})
	if errors.Is(err, session.ErrSlotBusy) {
		t.ReplyEphemeral("Ya hay una confirmación pendiente para ese usuario.")
		return
	}
	if err != nil {
		log.Printf("Warn clear session start failed: %v", err)
		t.ReplyEphemeral("No se pudo iniciar la operación.")
		return
	}

	t.ReplyComponents(fmt.Sprintf("¿Borrar todas las advertencias de %s?", mention(target.ID)),
		confirmButtons("warnclear_yes", "warnclear_no", sess.ID), true)
}

// publishModerationEvent mirrors the action onto the Redis stream for
// external consumers and into the guild's configured log channel. Failures on
// either path only log; the moderation action itself already happened.
func (b *Bot) publishModerationEvent(guildID, action, targetID, moderatorID, detail string) {
	if b.rdb != nil {
		if err := shareddata.PublishModerationEvent(b.ctx, b.rdb, map[string]interface{}{
			"guild_id":     guildID,
			"action":       action,
			"target_id":    targetID,
			"moderator_id": moderatorID,
			"detail":       detail,
		}); err != nil {
			log.Printf("Failed to publish moderation event: %v", err)
		}
	}

	cfg := b.configs.Load(b.ctx, guildID)
	if cfg.LogChannelID == "" {
		return
	}
	msg := fmt.Sprintf("**%s** por %s", action, mention(moderatorID))
	if targetID != "" {
		msg += " a " + mention(targetID)
	}
	if detail != "" {
		msg += ": " + detail
	}
	if _, err := b.session.ChannelMessageSend(cfg.LogChannelID, msg); err != nil {
		log.Printf("Failed to post to log channel %s: %v", cfg.LogChannelID, err)
	}
}
