package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Message: lo mínimo que el clasificador necesita de un mensaje del gateway.
type Message struct {
	ID          string
	ChannelID   string
	GuildID     string
	AuthorID    string
	AuthorBot   bool
	AuthorAdmin bool
	AuthorRoles []string
	Content     string
	Mentions    []string // user IDs, en orden de aparición
}

// Reaction: una reacción agregada en el canal de fracciones, junto con
// el estado vivo del mensaje reaccionado.
type Reaction struct {
	MessageID string
	ChannelID string
	GuildID   string
	Emoji     string

	UserID    string
	UserBot   bool
	UserAdmin bool
	UserRoles []string

	MessageAuthorID string
	MessageContent  string
}

type ClassKind int

const (
	// borrado por los filtros de higiene (bot, link, spam, broadcast...)
	ClassFiltered ClassKind = iota
	// ningún token coincide con un alias
	ClassNoMatch
	// más de una fracción en el mismo mensaje
	ClassTooMany
	// pedido válido: pasa a pending con reacciones ✅/❌
	ClassPendingGrant
	// contiene "weg"/"entfernen": quitar el rol directamente
	ClassRemovalRequest
	// menciona a otro user; sólo se puede pedir el rol para uno mismo
	ClassInvalidMention
)

// Classification es el resultado del clasificador, sin efectos.
type Classification struct {
	Kind    ClassKind
	Notice  string // aviso transitorio para el canal; vacío = borrar en silencio
	Faction *Faction
	Target  string // destinatario del removal (removal requests)
	Matches int
}

var removalKeywords = []string{"weg", "entfernen"}

const (
	maxContentRunes = 100
	maxTokens       = 10
)

// Classify aplica los filtros en orden estricto y decide la intención
// del mensaje. Determinista: mismo contenido → mismo resultado.
func Classify(reg *Registry, m Message) Classification {
	if m.AuthorBot {
		return Classification{Kind: ClassFiltered}
	}
	if strings.Contains(strings.ToLower(m.Content), "http") {
		return Classification{Kind: ClassFiltered}
	}
	if len(m.Mentions) > 1 {
		return Classification{Kind: ClassFiltered, Notice: ":hot_face: Nicht so viele User auf einmal"}
	}
	if strings.Contains(m.Content, "@everyone") || strings.Contains(m.Content, "@here") {
		return Classification{Kind: ClassFiltered, Notice: ":no_entry_sign: @everyone und @here ist nicht erlaubt"}
	}
	if utf8.RuneCountInString(m.Content) >= maxContentRunes {
		return Classification{Kind: ClassFiltered}
	}
	tokens := strings.Fields(strings.ToLower(m.Content))
	if len(tokens) >= maxTokens {
		return Classification{Kind: ClassFiltered}
	}

	matches, faction := CountAliasMatches(reg, m.Content)
	switch {
	case matches == 0:
		return Classification{Kind: ClassNoMatch, Notice: ":x: Fraktion nicht gefunden"}
	case matches > 1:
		return Classification{
			Kind:   ClassTooMany,
			Notice: ":hot_face: Nicht so viel auf einmal. Eine Rolle nach der anderen",
		}
	}

	for _, kw := range removalKeywords {
		for _, tok := range tokens {
			if tok == kw {
				target := m.AuthorID
				if len(m.Mentions) > 0 {
					target = m.Mentions[0]
				}
				return Classification{
					Kind:    ClassRemovalRequest,
					Faction: faction,
					Target:  target,
					Matches: matches,
				}
			}
		}
	}

	if len(m.Mentions) > 0 && m.Mentions[0] != m.AuthorID {
		return Classification{
			Kind:    ClassInvalidMention,
			Notice:  fmt.Sprintf(":x: <@%s> muss sich selbst die Rolle anfordern", m.Mentions[0]),
			Faction: faction,
		}
	}

	return Classification{Kind: ClassPendingGrant, Faction: faction, Matches: matches}
}

// CountAliasMatches cuenta los tokens que son alias válidos; devuelve
// la fracción del primer match. Lo usa el clasificador y también el
// resolver de reacciones, que re-parsea el contenido vivo del mensaje.
func CountAliasMatches(reg *Registry, content string) (int, *Faction) {
	matches := 0
	var faction *Faction
	for _, tok := range strings.Fields(strings.ToLower(content)) {
		if reg.AliasExists(tok) {
			matches++
			if faction == nil {
				faction = reg.ByAlias(tok)
			}
		}
	}
	return matches, faction
}
