package bot

import (
	"errors"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/civitasrp/civitas/src/session"
)

// Component and modal custom IDs carry "<kind>:<sessionID>" so a gesture can
// be routed back to the workflow that issued the message.
func splitCustomID(customID string) (kind, sessionID string) {
	kind, sessionID, _ = strings.Cut(customID, ":")
	return kind, sessionID
}

func customID(kind, sessionID string) string {
	return kind + ":" + sessionID
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	t := NewTurn(s, i)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i, t)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i, t)
	case discordgo.InteractionModalSubmit:
		b.handleModal(s, i, t)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn) {
	data := i.ApplicationCommandData()
	switch data.Name {
	case "dni":
		b.handleDNI(s, i, t, data)
	case "config":
		b.handleConfig(s, i, t, data)
	case "modificar":
		b.handleModify(s, i, t, data)
	case "warn":
		b.handleWarn(s, i, t, data)
	case "kiss":
		b.handleKiss(s, i, t, data)
	case "ban", "kick", "timeout", "purge":
		b.handleModeration(s, i, t, data)
	default:
		log.Printf("Unknown command %q", data.Name)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn) {
	data := i.MessageComponentData()
	kind, sessionID := splitCustomID(data.CustomID)

	sess := b.sessions.Resolve(sessionID)
	if sess == nil {
		t.Update("Esta interacción ya no está activa.", nil)
		return
	}

	g := session.Gesture{UserID: invokerID(i), Values: data.Values}

	switch kind {
	case "dnidel_yes", "warnclear_yes", "kiss_again":
		g.Action = session.ActionConfirm
	case "dnidel_no", "warnclear_no", "kiss_stop", "cfg_cancel":
		g.Action = session.ActionCancel
	case "cfg_role", "cfg_perms", "moddni_field":
		g.Action = session.ActionSelect
	default:
		log.Printf("Unknown component kind %q", kind)
		return
	}

	switch kind {
	case "moddni_field":
		// The modal stage responds with the modal itself, not an advance result.
		b.handleModifyFieldSelect(s, i, t, sess, g)
	case "kiss_again", "kiss_stop":
		// Committed kiss rounds chain into a fresh session with new buttons.
		b.handleKissGesture(s, i, t, sess, g)
	case "cfg_role", "cfg_perms":
		// Stage advances render the next picker, not a terminal message.
		b.handlePermisosGesture(s, i, t, sess, g)
	default:
		status, err := sess.Advance(b.ctx, g)
		b.renderGestureResult(t, sess, kind, status, err)
	}
}

func (b *Bot) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn) {
	data := i.ModalSubmitData()
	kind, sessionID := splitCustomID(data.CustomID)
	if kind != "moddni_modal" {
		log.Printf("Unknown modal kind %q", kind)
		return
	}

	sess := b.sessions.Resolve(sessionID)
	if sess == nil {
		t.ReplyEphemeral("Esta interacción ya no está activa.")
		return
	}

	b.handleModifySubmit(i, t, sess, modalInputValue(data))
}

// modalInputValue pulls the single text input out of the modal payload.
func modalInputValue(data discordgo.ModalSubmitInteractionData) string {
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range ar.Components {
			if in, ok := comp.(*discordgo.TextInput); ok {
				return in.Value
			}
		}
	}
	return ""
}

// renderGestureResult maps an Advance outcome onto the component message for
// the simple confirm/cancel flows. Multi-stage flows render their own UI.
func (b *Bot) renderGestureResult(t Turn, sess *session.Session, kind string, status session.Status, err error) {
	switch {
	case errors.Is(err, session.ErrNotOwner):
		t.ReplyEphemeral("Esta interacción no te pertenece.")
	case errors.Is(err, session.ErrFinished):
		t.Update("Esta interacción ya terminó.", nil)
	case errors.Is(err, session.ErrInvalidInput):
		t.ReplyEphemeral("Valor inválido: " + err.Error())
	case status == session.StatusCancelled:
		t.Update("Operación cancelada.", nil)
	case status == session.StatusCommitted && err != nil:
		log.Printf("Session %s commit failed: %v", sess.ID, err)
		t.Update("La operación falló, inténtalo de nuevo más tarde.", nil)
	case status == session.StatusCommitted:
		t.Update(committedMessage(kind), nil)
	}
}

func committedMessage(kind string) string {
	switch kind {
	case "dnidel_yes":
		return "El documento de identidad fue eliminado."
	case "warnclear_yes":
		return "Las advertencias fueron eliminadas."
	default:
		return "Operación completada."
	}
}

func confirmButtons(yesKind, noKind, sessionID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Confirmar",
					Style:    discordgo.DangerButton,
					CustomID: customID(yesKind, sessionID),
				},
				discordgo.Button{
					Label:    "Cancelar",
					Style:    discordgo.SecondaryButton,
					CustomID: customID(noKind, sessionID),
				},
			},
		},
	}
}
