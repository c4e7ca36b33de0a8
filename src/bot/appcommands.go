package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

var countryChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Chile", Value: "CL"},
	{Name: "Argentina", Value: "AR"},
	{Name: "Brasil", Value: "BR"},
	{Name: "Bolivia", Value: "BO"},
	{Name: "Perú", Value: "PE"},
	{Name: "Colombia", Value: "CO"},
	{Name: "México", Value: "MX"},
	{Name: "Uruguay", Value: "UY"},
	{Name: "Paraguay", Value: "PY"},
	{Name: "Ecuador", Value: "EC"},
	{Name: "Venezuela", Value: "VE"},
	{Name: "Guatemala", Value: "GT"},
	{Name: "El Salvador", Value: "SV"},
	{Name: "Honduras", Value: "HN"},
	{Name: "Nicaragua", Value: "NI"},
	{Name: "Costa Rica", Value: "CR"},
	{Name: "Panamá", Value: "PA"},
	{Name: "República Dominicana", Value: "DO"},
	{Name: "Cuba", Value: "CU"},
	{Name: "Genérico", Value: "XX"},
}

var languageChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Español", Value: "es"},
	{Name: "English", Value: "en"},
	{Name: "Português", Value: "pt"},
}

var genderChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Masculino", Value: "Masculino"},
	{Name: "Femenino", Value: "Femenino"},
	{Name: "Otro", Value: "Otro"},
}

func appCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "dni",
			Description: "Gestión del documento de identidad",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "crear",
					Description: "Crea tu documento de identidad",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "nombre", Description: "Primer nombre", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "apellido", Description: "Primer apellido", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "fecha_nacimiento", Description: "Fecha de nacimiento (DD/MM/AAAA)", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "genero", Description: "Género", Required: true, Choices: genderChoices},
						{Type: discordgo.ApplicationCommandOptionString, Name: "nacionalidad", Description: "Nacionalidad", Required: true, Choices: countryChoices},
						{Type: discordgo.ApplicationCommandOptionString, Name: "roblox", Description: "Usuario de Roblox", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "segundo_nombre", Description: "Segundo nombre", Required: false},
						{Type: discordgo.ApplicationCommandOptionString, Name: "segundo_apellido", Description: "Segundo apellido", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "ver",
					Description: "Muestra un documento de identidad",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "Usuario a consultar", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "borrar",
					Description: "Borra un documento de identidad",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "Usuario cuyo documento borrar (moderación)", Required: false},
					},
				},
			},
		},
		{
			Name:        "config",
			Description: "Configuración del servidor",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Cambia idioma, país o prefijo",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "idioma", Description: "Idioma", Required: false, Choices: languageChoices},
						{Type: discordgo.ApplicationCommandOptionString, Name: "pais", Description: "País por defecto", Required: false, Choices: countryChoices},
						{Type: discordgo.ApplicationCommandOptionString, Name: "prefijo", Description: "Prefijo de comandos", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set-log-channel",
					Description: "Canal de registros de moderación",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "canal", Description: "Canal de registros", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Muestra la configuración actual",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        "permisos",
					Description: "Permisos por rol",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "set-rol",
							Description: "Asigna permisos a un rol",
						},
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "eliminar-rol",
							Description: "Quita todos los permisos de un rol",
							Options: []*discordgo.ApplicationCommandOption{
								{Type: discordgo.ApplicationCommandOptionRole, Name: "rol", Description: "Rol a limpiar", Required: true},
							},
						},
					},
				},
			},
		},
		{
			Name:        "modificar",
			Description: "Modifica registros existentes",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "dni",
					Description: "Modifica un campo de tu documento",
				},
			},
		},
		{
			Name:        "warn",
			Description: "Advertencias de moderación",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Advierte a un usuario",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "Usuario a advertir", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "razon", Description: "Motivo de la advertencia", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Lista las advertencias de un usuario",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "Usuario a consultar", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Borra todas las advertencias de un usuario",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "Usuario a limpiar", Required: true},
					},
				},
			},
		},
		{
			Name:        "kiss",
			Description: "Besa a otro usuario",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "A quién besar", Required: true},
			},
		},
		{
			Name:        "ban",
			Description: "Banea a un usuario",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "Usuario a banear", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "razon", Description: "Motivo", Required: false},
			},
		},
		{
			Name:        "kick",
			Description: "Expulsa a un usuario",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "Usuario a expulsar", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "razon", Description: "Motivo", Required: false},
			},
		},
		{
			Name:        "timeout",
			Description: "Silencia temporalmente a un usuario",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "Usuario a silenciar", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutos", Description: "Duración en minutos", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "razon", Description: "Motivo", Required: false},
			},
		},
		{
			Name:        "purge",
			Description: "Borra mensajes recientes del canal",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "cantidad", Description: "Cantidad de mensajes (1-100)", Required: true},
			},
		},
	}
}

func (b *Bot) registerCommands(s *discordgo.Session) error {
	appID := s.State.User.ID
	for _, cmd := range appCommands() {
		if _, err := s.ApplicationCommandCreate(appID, "", cmd); err != nil {
			log.Printf("Failed to register /%s: %v", cmd.Name, err)
			return err
		}
	}
	log.Printf("Registered %d application commands", len(appCommands()))
	return nil
}
