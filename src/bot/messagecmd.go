package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/civitasrp/civitas/src/permissions"
)

// splitPrefixCommand strips the guild's prefix off a message and splits the
// remainder into a lowercased command name and its arguments.
func splitPrefixCommand(content, prefix string) (cmd string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// parseMention extracts a user ID from a <@id>/<@!id> mention or a bare ID.
func parseMention(arg string) string {
	id := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(arg, "<@"), "!"), ">")
	if id == "" {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return id
}

// handleMessageCreate is the prefix text-command transport. It reaches the
// same command cores as the slash handlers through the Turn interface; the
// picker- and modal-backed workflows stay slash-only since text channels
// cannot present those surfaces.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	cfg := b.configs.Load(b.ctx, m.GuildID)
	cmd, args, ok := splitPrefixCommand(m.Content, cfg.Prefix)
	if !ok {
		return
	}

	t := newMessageTurn(s, m)
	actor := b.actorFromMessage(s, m)

	switch cmd {
	case "dni":
		b.messageDNI(t, m, actor, args)
	case "warn":
		b.messageWarn(t, m, actor, args)
	case "kiss":
		b.messageKiss(t, m, actor, args)
	case "config":
		b.messageConfig(t, m, actor, args)
	}
}

func (b *Bot) messageDNI(t Turn, m *discordgo.MessageCreate, actor permissions.Actor, args []string) {
	if len(args) == 0 || args[0] != "ver" {
		t.Reply("Uso: dni ver [@usuario]. Crear, borrar y modificar son comandos de barra.")
		return
	}
	if !b.allow(t, m.GuildID, actor, permissions.CapUseDNI) {
		return
	}

	targetID := m.Author.ID
	if len(args) > 1 {
		targetID = parseMention(args[1])
		if targetID == "" {
			t.Reply("Menciona a un usuario válido.")
			return
		}
	}
	b.replyIdentity(t, m.GuildID, targetID)
}

func (b *Bot) messageWarn(t Turn, m *discordgo.MessageCreate, actor permissions.Actor, args []string) {
	if !b.allow(t, m.GuildID, actor, permissions.CapWarn) {
		return
	}
	if len(args) < 2 {
		t.Reply("Uso: warn add @usuario <motivo> | warn list @usuario")
		return
	}
	targetID := parseMention(args[1])
	if targetID == "" {
		t.Reply("Menciona a un usuario válido.")
		return
	}

	switch args[0] {
	case "list":
		b.replyWarnList(t, m.GuildID, targetID)
	case "add":
		reason := strings.Join(args[2:], " ")
		if reason == "" {
			t.Reply("Indica el motivo de la advertencia.")
			return
		}
		b.addWarning(t, m.GuildID, targetID, m.Author.ID, reason)
	default:
		t.Reply("Uso: warn add @usuario <motivo> | warn list @usuario")
	}
}

func (b *Bot) messageKiss(t Turn, m *discordgo.MessageCreate, actor permissions.Actor, args []string) {
	if !b.allow(t, m.GuildID, actor, permissions.CapKiss) {
		return
	}
	if len(args) == 0 {
		t.Reply("Uso: kiss @usuario")
		return
	}
	targetID := parseMention(args[0])
	if targetID == "" {
		t.Reply("Menciona a un usuario válido.")
		return
	}
	b.doKiss(t, m.GuildID, m.ChannelID, m.Author.ID, targetID)
}

func (b *Bot) messageConfig(t Turn, m *discordgo.MessageCreate, actor permissions.Actor, args []string) {
	if len(args) == 0 || args[0] != "show" {
		t.Reply("Uso: config show. Los demás ajustes son comandos de barra.")
		return
	}
	if !actor.IsGuildOwner {
		t.Reply("Solo el dueño del servidor puede usar este comando.")
		return
	}
	b.replyConfig(t, m.GuildID)
}
