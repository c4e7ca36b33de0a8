package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civitasrp/civitas/src/permissions"
)

func TestSplitPrefixCommand(t *testing.T) {
	cmd, args, ok := splitPrefixCommand("!warn add <@1> spam en general", "!")
	assert.True(t, ok)
	assert.Equal(t, "warn", cmd)
	assert.Equal(t, []string{"add", "<@1>", "spam", "en", "general"}, args)

	cmd, args, ok = splitPrefixCommand("??DNI ver", "??")
	assert.True(t, ok)
	assert.Equal(t, "dni", cmd)
	assert.Equal(t, []string{"ver"}, args)

	_, _, ok = splitPrefixCommand("hola sin prefijo", "!")
	assert.False(t, ok)

	// An unconfigured prefix disables the text transport entirely.
	_, _, ok = splitPrefixCommand("!warn", "")
	assert.False(t, ok)

	_, _, ok = splitPrefixCommand("!   ", "!")
	assert.False(t, ok)
}

func TestParseMention(t *testing.T) {
	assert.Equal(t, "123456", parseMention("<@123456>"))
	assert.Equal(t, "123456", parseMention("<@!123456>"))
	assert.Equal(t, "123456", parseMention("123456"))
	assert.Empty(t, parseMention("<@&123456>"), "role mentions are not users")
	assert.Empty(t, parseMention("pepe"))
	assert.Empty(t, parseMention(""))
}

func TestDNIDeleteCapability(t *testing.T) {
	assert.Equal(t, permissions.CapUseDNI, dniDeleteCapability("u1", "u1"))
	assert.Equal(t, permissions.CapDeleteDNI, dniDeleteCapability("mod", "u1"))
}
