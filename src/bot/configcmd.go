package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/civitasrp/civitas/src/guildconfig"
	"github.com/civitasrp/civitas/src/permissions"
	"github.com/civitasrp/civitas/src/session"
	"github.com/civitasrp/civitas/src/types"
)

func (b *Bot) handleConfig(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]
	switch sub.Name {
	case "set":
		b.configSet(s, i, t, sub)
	case "set-log-channel":
		b.configSetLogChannel(s, i, t, sub)
	case "show":
		b.configShow(s, i, t)
	case "permisos":
		inner := sub.Options[0]
		switch inner.Name {
		case "set-rol":
			b.permisosSetRole(s, i, t)
		case "eliminar-rol":
			b.permisosRemoveRole(s, i, t, inner)
		}
	}
}

func (b *Bot) configSet(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !b.requireGuildOwner(s, i, t) {
		return
	}

	opts := optionMap(sub.Options)
	var partial guildconfig.Partial
	if o, ok := opts["idioma"]; ok {
		v := o.StringValue()
		if !guildconfig.ValidLanguage(v) {
			t.ReplyEphemeral(fmt.Sprintf("Idioma inválido. Usa uno de: %s.", strings.Join(guildconfig.Languages, ", ")))
			return
		}
		partial.Language = &v
	}
	if o, ok := opts["pais"]; ok {
		v := o.StringValue()
		partial.Country = &v
	}
	if o, ok := opts["prefijo"]; ok {
		v := o.StringValue()
		partial.Prefix = &v
	}
	if partial.Language == nil && partial.Country == nil && partial.Prefix == nil {
		t.ReplyEphemeral("Indica al menos un valor a cambiar.")
		return
	}

	if _, err := b.configs.Save(b.ctx, i.GuildID, partial); err != nil {
		log.Printf("Config save failed for guild %s: %v", i.GuildID, err)
		t.ReplyEphemeral("No se pudo guardar la configuración, inténtalo más tarde.")
		return
	}
	t.ReplyEphemeral("Configuración actualizada.")
}

func (b *Bot) configSetLogChannel(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !b.requireGuildOwner(s, i, t) {
		return
	}

	channel := optionMap(sub.Options)["canal"].ChannelValue(nil)
	if _, err := b.configs.Save(b.ctx, i.GuildID, guildconfig.Partial{LogChannelID: &channel.ID}); err != nil {
		log.Printf("Config save failed for guild %s: %v", i.GuildID, err)
		t.ReplyEphemeral("No se pudo guardar la configuración, inténtalo más tarde.")
		return
	}
	t.ReplyEphemeral(fmt.Sprintf("Canal de registros establecido en <#%s>.", channel.ID))
}

func (b *Bot) configShow(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn) {
	if !b.requireGuildOwner(s, i, t) {
		return
	}
	b.replyConfig(t, i.GuildID)
}

func (b *Bot) replyConfig(t Turn, guildID string) {
	cfg := b.configs.Load(b.ctx, guildID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Idioma:** %s\n**País:** %s\n**Prefijo:** %s\n", cfg.Language, orDash(cfg.Country), orDash(cfg.Prefix))
	if cfg.LogChannelID != "" {
		fmt.Fprintf(&sb, "**Canal de registros:** <#%s>\n", cfg.LogChannelID)
	} else {
		sb.WriteString("**Canal de registros:** —\n")
	}
	if len(cfg.RolePermissions) == 0 {
		sb.WriteString("**Permisos por rol:** ninguno\n")
	} else {
		sb.WriteString("**Permisos por rol:**\n")
		for roleID, perms := range cfg.RolePermissions {
			fmt.Fprintf(&sb, "- <@&%s>: %s\n", roleID, strings.Join(perms, ", "))
		}
	}
	t.ReplyEphemeral(sb.String())
}

// permisosSetRole opens the two-stage role→permissions workflow. Only one can
// run per guild at a time; everything commits in a single Save at the end.
func (b *Bot) permisosSetRole(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn) {
	if !b.requireGuildOwner(s, i, t) {
		return
	}

	guildID := i.GuildID
	sess, err := b.sessions.Start(session.Spec{
		Key:       "cfg:perms:" + guildID,
		OwnerID:   invokerID(i),
		GuildID:   guildID,
		ChannelID: i.ChannelID,
		TTL:       workflowTTL,
		Stages: []session.Stage{
			{
				Name:  "role",
				Field: "role",
				Validate: func(_ map[string]string, values []string) error {
					if len(values) != 1 || values[0] == "" {
						return errors.New("selecciona un rol")
					}
					return nil
				},
			},
			{
				Name:  "perms",
				Field: "perms",
				Validate: func(_ map[string]string, values []string) error {
					if len(values) == 0 {
						return errors.New("selecciona al menos un permiso")
					}
					for _, v := range values {
						if !permissions.Valid(v) {
							return fmt.Errorf("permiso desconocido %q", v)
						}
					}
					return nil
				},
			},
		},
		Commit: func(ctx context.Context, input map[string]string) error {
			roleID := input["role"]
			perms := strings.Split(input["perms"], ",")

			// Re-read the authoritative map before merging the new entry.
			cfg := b.configs.Load(ctx, guildID)
			merged := make(types.RolePermissions, len(cfg.RolePermissions)+1)
			for k, v := range cfg.RolePermissions {
				merged[k] = append([]string(nil), v...)
			}
			merged[roleID] = perms

			_, err := b.configs.Save(ctx, guildID, guildconfig.Partial{RolePermissions: &merged})
			return err
		},
	})
	if errors.Is(err, session.ErrSlotBusy) {
		t.ReplyEphemeral("Ya hay una edición de permisos en curso en este servidor.")
		return
	}
	if err != nil {
		log.Printf("Permission session start failed: %v", err)
		t.ReplyEphemeral("No se pudo iniciar la operación.")
		return
	}

	t.ReplyComponents("Selecciona el rol a configurar:", rolePicker(sess.ID), true)
}

func (b *Bot) permisosRemoveRole(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !b.requireGuildOwner(s, i, t) {
		return
	}

	role := optionMap(sub.Options)["rol"].RoleValue(nil, i.GuildID)
	cfg := b.configs.Load(b.ctx, i.GuildID)
	if _, ok := cfg.RolePermissions[role.ID]; !ok {
		t.ReplyEphemeral("Ese rol no tiene permisos asignados.")
		return
	}

	pruned := make(types.RolePermissions, len(cfg.RolePermissions))
	for k, v := range cfg.RolePermissions {
		if k == role.ID {
			continue
		}
		pruned[k] = append([]string(nil), v...)
	}
	if _, err := b.configs.Save(b.ctx, i.GuildID, guildconfig.Partial{RolePermissions: &pruned}); err != nil {
		log.Printf("Config save failed for guild %s: %v", i.GuildID, err)
		t.ReplyEphemeral("No se pudo guardar la configuración, inténtalo más tarde.")
		return
	}
	t.ReplyEphemeral(fmt.Sprintf("Permisos del rol <@&%s> eliminados.", role.ID))
}

// handlePermisosGesture advances the workflow and renders the next picker.
func (b *Bot) handlePermisosGesture(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sess *session.Session, g session.Gesture) {
	status, err := sess.Advance(b.ctx, g)
	switch {
	case errors.Is(err, session.ErrNotOwner):
		t.ReplyEphemeral("Esta interacción no te pertenece.")
	case errors.Is(err, session.ErrFinished):
		t.Update("Esta interacción ya terminó.", nil)
	case errors.Is(err, session.ErrInvalidInput):
		t.ReplyEphemeral("Selección inválida, vuelve a intentarlo.")
	case status == session.StatusCommitted && err != nil:
		log.Printf("Permission commit failed: %v", err)
		t.Update("No se pudieron guardar los permisos, inténtalo más tarde.", nil)
	case status == session.StatusCommitted:
		t.Update(fmt.Sprintf("Permisos guardados para <@&%s>: %s",
			sess.Value("role"), strings.ReplaceAll(sess.Value("perms"), ",", ", ")), nil)
	case status == session.StatusActive:
		t.Update("Ahora selecciona los permisos para <@&"+sess.Value("role")+">:", permissionPicker(sess.ID))
	}
}

func rolePicker(sessionID string) []discordgo.MessageComponent {
	one := 1
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:  discordgo.RoleSelectMenu,
					CustomID:  customID("cfg_role", sessionID),
					MinValues: &one,
					MaxValues: 1,
				},
			},
		},
		cancelRow(sessionID),
	}
}

func permissionPicker(sessionID string) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(permissions.All))
	for _, c := range permissions.All {
		options = append(options, discordgo.SelectMenuOption{Label: string(c), Value: string(c)})
	}
	one := 1
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:  discordgo.StringSelectMenu,
					CustomID:  customID("cfg_perms", sessionID),
					MinValues: &one,
					MaxValues: len(permissions.All),
					Options:   options,
				},
			},
		},
		cancelRow(sessionID),
	}
}

func cancelRow(sessionID string) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Cancelar",
				Style:    discordgo.SecondaryButton,
				CustomID: customID("cfg_cancel", sessionID),
			},
		},
	}
}

func orDash(v string) string {
	if v == "" {
		return "—"
	}
	return v
}
