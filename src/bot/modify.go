package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/civitasrp/civitas/src/identity"
	"github.com/civitasrp/civitas/src/permissions"
	"github.com/civitasrp/civitas/src/session"
	"github.com/civitasrp/civitas/src/store"
)

// modifiableFields maps picker values to their Spanish labels. The value key
// doubles as the patch selector at commit time.
var modifiableFields = []struct {
	Value string
	Label string
}{
	{"first_name", "Nombre"},
	{"second_name", "Segundo nombre"},
	{"first_last_name", "Apellido"},
	{"second_last_name", "Segundo apellido"},
	{"birth_date", "Fecha de nacimiento"},
	{"gender", "Género"},
	{"nationality", "Nacionalidad"},
	{"roblox_name", "Usuario de Roblox"},
}

func fieldLabel(value string) string {
	for _, f := range modifiableFields {
		if f.Value == value {
			return f.Label
		}
	}
	return value
}

func (b *Bot) handleModify(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, data discordgo.ApplicationCommandInteractionData) {
	if data.Options[0].Name != "dni" {
		return
	}
	if !b.requireCapability(s, i, t, permissions.CapModifyDNI) {
		return
	}

	guildID, userID := i.GuildID, invokerID(i)
	if _, err := b.identities.Find(b.ctx, guildID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			t.ReplyEphemeral("No tienes documento de identidad que modificar.")
		} else {
			log.Printf("Identity lookup failed: %v", err)
			t.ReplyEphemeral("No se pudo consultar el documento, inténtalo más tarde.")
		}
		return
	}

	sess, err := b.sessions.Start(session.Spec{
		Key:       fmt.Sprintf("dni:mod:%s:%s", guildID, userID),
		OwnerID:   userID,
		GuildID:   guildID,
		ChannelID: i.ChannelID,
		TTL:       workflowTTL,
		Stages: []session.Stage{
			{
				Name:  "field",
				Field: "field",
				Validate: func(_ map[string]string, values []string) error {
					if len(values) != 1 || !knownField(values[0]) {
						return errors.New("campo desconocido")
					}
					return nil
				},
			},
			{
				Name:   "value",
				Field:  "value",
				Submit: true,
				Validate: func(input map[string]string, values []string) error {
					if len(values) != 1 || strings.TrimSpace(values[0]) == "" {
						return errors.New("valor vacío")
					}
					return validateFieldValue(input["field"], values[0])
				},
			},
		},
		Commit: func(ctx context.Context, input map[string]string) error {
			return b.commitModification(ctx, guildID, userID, input["field"], input["value"])
		},
	})
	if errors.Is(err, session.ErrSlotBusy) {
		t.ReplyEphemeral("Ya tienes una modificación en curso.")
		return
	}
	if err != nil {
		log.Printf("Modify session start failed: %v", err)
		t.ReplyEphemeral("No se pudo iniciar la operación.")
		return
	}

	t.ReplyComponents("Selecciona el campo que quieres modificar:", fieldPicker(sess.ID), true)
}

func knownField(value string) bool {
	for _, f := range modifiableFields {
		if f.Value == value {
			return true
		}
	}
	return false
}

func validateFieldValue(field, value string) error {
	switch field {
	case "birth_date":
		if _, err := identity.ParseBirthDate(value); err != nil {
			return errors.New("la fecha debe tener el formato DD/MM/AAAA y ser una fecha real")
		}
	case "gender":
		if !identity.ValidGender(value) {
			return fmt.Errorf("el género debe ser uno de: %s", strings.Join(identity.Genders, ", "))
		}
	}
	return nil
}

// commitModification re-reads nothing it doesn't need: the patch is built
// from the committed input and the age recomputation happens in the store.
func (b *Bot) commitModification(ctx context.Context, guildID, userID, field, value string) error {
	var patch store.IdentityPatch
	switch field {
	case "first_name":
		patch.FirstName = &value
	case "second_name":
		patch.SecondName = &value
	case "first_last_name":
		patch.FirstLastName = &value
	case "second_last_name":
		patch.SecondLastName = &value
	case "birth_date":
		patch.BirthDate = &value
	case "gender":
		patch.Gender = &value
	case "nationality":
		patch.Nationality = &value
	case "roblox_name":
		patch.RobloxName = &value
		if url, err := b.roblox.AvatarURL(ctx, value); err == nil {
			patch.RobloxAvatarURL = &url
		} else {
			log.Printf("Roblox avatar refresh for %q failed: %v", value, err)
		}
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return b.identities.Update(ctx, guildID, userID, patch)
}

// handleModifyFieldSelect advances the field stage and opens the value modal.
// The picker message stays on screen after the modal opens, so a re-select at
// the value stage is answered with a notice instead of being fed into the
// session (the value stage is submit-only either way).
func (b *Bot) handleModifyFieldSelect(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sess *session.Session, g session.Gesture) {
	if sess.StageName() != "field" {
		t.ReplyEphemeral("Ya elegiste un campo; completa el formulario o cancela.")
		return
	}
	status, err := sess.Advance(b.ctx, g)
	switch {
	case errors.Is(err, session.ErrNotOwner):
		t.ReplyEphemeral("Esta interacción no te pertenece.")
		return
	case errors.Is(err, session.ErrFinished):
		t.Update("Esta interacción ya terminó.", nil)
		return
	case err != nil || status != session.StatusActive:
		t.ReplyEphemeral("Selección inválida, vuelve a intentarlo.")
		return
	}

	field := sess.Value("field")
	t.Modal(customID("moddni_modal", sess.ID), "Modificar "+fieldLabel(field),
		[]discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "value",
						Label:       fieldLabel(field),
						Style:       discordgo.TextInputShort,
						Placeholder: fieldPlaceholder(field),
						Required:    true,
						MaxLength:   64,
					},
				},
			},
		})
}

func fieldPlaceholder(field string) string {
	switch field {
	case "birth_date":
		return "DD/MM/AAAA"
	case "gender":
		return strings.Join(identity.Genders, " / ")
	default:
		return ""
	}
}

// handleModifySubmit feeds the modal value into the final stage; a commit
// here updates the record (dob changes recompute age in the same write).
func (b *Bot) handleModifySubmit(i *discordgo.InteractionCreate, t Turn, sess *session.Session, value string) {
	status, err := sess.Advance(b.ctx, session.Gesture{
		UserID: invokerID(i),
		Action: session.ActionSubmit,
		Values: []string{value},
	})
	switch {
	case errors.Is(err, session.ErrNotOwner):
		t.ReplyEphemeral("Esta interacción no te pertenece.")
	case errors.Is(err, session.ErrFinished):
		t.ReplyEphemeral("Esta interacción ya terminó.")
	case errors.Is(err, session.ErrInvalidInput):
		t.ReplyEphemeral("Valor inválido: " + strings.TrimPrefix(err.Error(), session.ErrInvalidInput.Error()+": "))
	case status == session.StatusCommitted && err != nil:
		log.Printf("Modification commit failed: %v", err)
		t.ReplyEphemeral("No se pudo guardar el cambio, inténtalo más tarde.")
	case status == session.StatusCommitted:
		t.ReplyEphemeral(fmt.Sprintf("Campo **%s** actualizado.", fieldLabel(sess.Value("field"))))
	}
}

func fieldPicker(sessionID string) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(modifiableFields))
	for _, f := range modifiableFields {
		options = append(options, discordgo.SelectMenuOption{Label: f.Label, Value: f.Value})
	}
	one := 1
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:  discordgo.StringSelectMenu,
					CustomID:  customID("moddni_field", sessionID),
					MinValues: &one,
					MaxValues: 1,
					Options:   options,
				},
			},
		},
		cancelRow(sessionID),
	}
}
