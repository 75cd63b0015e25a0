package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyReg(t *testing.T) *Registry {
	t.Helper()
	return mustRegistry(t, validConfig)
}

func msg(content string) Message {
	return Message{
		ID:        "m1",
		ChannelID: "200",
		GuildID:   "g1",
		AuthorID:  "author",
		Content:   content,
	}
}

func TestClassifyFilters(t *testing.T) {
	reg := classifyReg(t)

	t.Run("bot author", func(t *testing.T) {
		m := msg("ballas")
		m.AuthorBot = true
		c := Classify(reg, m)
		assert.Equal(t, ClassFiltered, c.Kind)
		assert.Empty(t, c.Notice)
	})

	t.Run("link", func(t *testing.T) {
		c := Classify(reg, msg("schau mal HTTPS://evil.example"))
		assert.Equal(t, ClassFiltered, c.Kind)
		assert.Empty(t, c.Notice)
	})

	t.Run("too many mentions", func(t *testing.T) {
		m := msg("ballas <@1> <@2>")
		m.Mentions = []string{"1", "2"}
		c := Classify(reg, m)
		assert.Equal(t, ClassFiltered, c.Kind)
		assert.NotEmpty(t, c.Notice)
	})

	t.Run("broadcast", func(t *testing.T) {
		c := Classify(reg, msg("ballas @everyone"))
		assert.Equal(t, ClassFiltered, c.Kind)
		assert.NotEmpty(t, c.Notice)
		c = Classify(reg, msg("@here ballas"))
		assert.Equal(t, ClassFiltered, c.Kind)
	})

	t.Run("too long", func(t *testing.T) {
		c := Classify(reg, msg(strings.Repeat("x", 100)))
		assert.Equal(t, ClassFiltered, c.Kind)
		assert.Empty(t, c.Notice)
	})

	t.Run("too many tokens", func(t *testing.T) {
		c := Classify(reg, msg("a b c d e f g h i j"))
		assert.Equal(t, ClassFiltered, c.Kind)
		assert.Empty(t, c.Notice)
	})

	// el filtro de links va antes que el de mentions
	t.Run("order", func(t *testing.T) {
		m := msg("http://x <@1> <@2>")
		m.Mentions = []string{"1", "2"}
		c := Classify(reg, m)
		assert.Empty(t, c.Notice)
	})
}

func TestClassifyMatches(t *testing.T) {
	reg := classifyReg(t)

	t.Run("no match", func(t *testing.T) {
		c := Classify(reg, msg("vagos bitte"))
		assert.Equal(t, ClassNoMatch, c.Kind)
		assert.NotEmpty(t, c.Notice)
	})

	t.Run("too many factions", func(t *testing.T) {
		c := Classify(reg, msg("ballas grove"))
		assert.Equal(t, ClassTooMany, c.Kind)
	})

	// el mismo token repetido cuenta dos veces
	t.Run("repeated token", func(t *testing.T) {
		c := Classify(reg, msg("ballas ballas"))
		assert.Equal(t, ClassTooMany, c.Kind)
	})

	t.Run("pending grant", func(t *testing.T) {
		c := Classify(reg, msg("Ballas bitte"))
		require.Equal(t, ClassPendingGrant, c.Kind)
		assert.Equal(t, "ballas", c.Faction.Name())
		assert.Equal(t, 1, c.Matches)
	})

	t.Run("self mention is fine", func(t *testing.T) {
		m := msg("ballas <@author>")
		m.Mentions = []string{"author"}
		c := Classify(reg, m)
		assert.Equal(t, ClassPendingGrant, c.Kind)
	})

	t.Run("foreign mention", func(t *testing.T) {
		m := msg("ballas <@other>")
		m.Mentions = []string{"other"}
		c := Classify(reg, m)
		assert.Equal(t, ClassInvalidMention, c.Kind)
	})
}

func TestClassifyRemoval(t *testing.T) {
	reg := classifyReg(t)

	t.Run("self removal", func(t *testing.T) {
		c := Classify(reg, msg("ballas weg"))
		require.Equal(t, ClassRemovalRequest, c.Kind)
		assert.Equal(t, "author", c.Target)
		assert.Equal(t, "ballas", c.Faction.Name())
	})

	t.Run("removal with target", func(t *testing.T) {
		m := msg("entfernen grove <@victim>")
		m.Mentions = []string{"victim"}
		c := Classify(reg, m)
		require.Equal(t, ClassRemovalRequest, c.Kind)
		assert.Equal(t, "victim", c.Target)
		assert.Equal(t, "grove", c.Faction.Name())
	})

	// "weg" le gana al chequeo de mentions ajenas
	t.Run("removal beats invalid mention", func(t *testing.T) {
		m := msg("ballas weg <@other>")
		m.Mentions = []string{"other"}
		c := Classify(reg, m)
		assert.Equal(t, ClassRemovalRequest, c.Kind)
	})
}

func TestClassifyIdempotent(t *testing.T) {
	reg := classifyReg(t)
	m := msg("ballas bitte")
	first := Classify(reg, m)
	second := Classify(reg, m)
	assert.Equal(t, first, second)
}

func TestCountAliasMatches(t *testing.T) {
	reg := classifyReg(t)

	n, f := CountAliasMatches(reg, "BALLAS bitte danke")
	assert.Equal(t, 1, n)
	require.NotNil(t, f)
	assert.Equal(t, "ballas", f.Name())

	n, f = CountAliasMatches(reg, "ballas grove families")
	assert.Equal(t, 3, n)
	assert.Equal(t, "ballas", f.Name()) // la primera gana

	n, f = CountAliasMatches(reg, "nix da")
	assert.Zero(t, n)
	assert.Nil(t, f)
}
