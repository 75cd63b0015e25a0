package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ConfigError marks a fatal problem in the faction config document.
// The bot refuses to start on any of these.
type ConfigError struct{ Reason string }

func (e *ConfigError) Error() string { return "faction config: " + e.Reason }

func configErrf(format string, a ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, a...)}
}

// Faction es inmutable después de LoadRegistry.
type Faction struct {
	MemberRoleID string
	OGRoleIDs    []string
	Aliases      []string // el primero es el nombre canónico
}

func (f *Faction) Name() string { return f.Aliases[0] }

// Registry: tabla de fracciones, read-only después de cargar.
type Registry struct {
	LogChannelID  string
	FactionChatID string

	factions []*Faction
	byAlias  map[string]*Faction
}

type factionDoc struct {
	Role    any      `json:"role"`
	OGs     []any    `json:"ogs"`
	Aliases []string `json:"aliases"`
}

type registryDoc struct {
	LogChannelID  any          `json:"log_channel_id"`
	FactionChatID any          `json:"faction_chat_id"`
	Factions      []factionDoc `json:"factions"`
}

// LoadRegistry parsea el documento JSON una sola vez al arranque.
func LoadRegistry(doc []byte) (*Registry, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var raw registryDoc
	if err := dec.Decode(&raw); err != nil {
		return nil, configErrf("document is not valid JSON: %v", err)
	}

	r := &Registry{byAlias: map[string]*Faction{}}
	var err error
	if r.LogChannelID, err = snowflake(raw.LogChannelID, "log_channel_id"); err != nil {
		return nil, err
	}
	if r.FactionChatID, err = snowflake(raw.FactionChatID, "faction_chat_id"); err != nil {
		return nil, err
	}
	if len(raw.Factions) == 0 {
		return nil, configErrf("'factions' list is missing or empty")
	}
	for _, fd := range raw.Factions {
		f, err := factionFromDoc(fd)
		if err != nil {
			return nil, err
		}
		r.factions = append(r.factions, f)
	}

	// alias únicos sobre TODO el set, no sólo por fracción
	for _, f := range r.factions {
		for _, a := range f.Aliases {
			if _, dup := r.byAlias[a]; dup {
				return nil, configErrf("alias %q is used by more than one faction", a)
			}
			r.byAlias[a] = f
		}
	}
	return r, nil
}

func factionFromDoc(fd factionDoc) (*Faction, error) {
	roleID, err := snowflake(fd.Role, "role")
	if err != nil {
		return nil, err
	}
	if len(fd.OGs) == 0 {
		return nil, configErrf("'ogs' list is missing or empty")
	}
	ogs := make([]string, 0, len(fd.OGs))
	seenOG := map[string]struct{}{}
	for _, v := range fd.OGs {
		id, err := snowflake(v, "ogs")
		if err != nil {
			return nil, err
		}
		if _, dup := seenOG[id]; dup {
			continue
		}
		seenOG[id] = struct{}{}
		ogs = append(ogs, id)
	}
	if len(fd.Aliases) == 0 {
		return nil, configErrf("'aliases' list is missing or empty")
	}
	aliases := make([]string, 0, len(fd.Aliases))
	seenAlias := map[string]struct{}{}
	for _, a := range fd.Aliases {
		if _, dup := seenAlias[a]; dup {
			continue
		}
		seenAlias[a] = struct{}{}
		aliases = append(aliases, a)
	}
	return &Faction{MemberRoleID: roleID, OGRoleIDs: ogs, Aliases: aliases}, nil
}

// snowflake acepta números JSON o strings numéricos y devuelve el ID como string.
func snowflake(v any, field string) (string, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", configErrf("%q is not defined", field)
	case json.Number:
		s = t.String()
	case string:
		s = t
	default:
		return "", configErrf("%q must be a numeric Discord ID", field)
	}
	if s == "" {
		return "", configErrf("%q must be a numeric Discord ID", field)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", configErrf("%q must be a numeric Discord ID", field)
		}
	}
	return s, nil
}

func (r *Registry) AliasExists(token string) bool {
	_, ok := r.byAlias[token]
	return ok
}

func (r *Registry) ByAlias(token string) *Faction { return r.byAlias[token] }

func (r *Registry) Factions() []*Faction { return r.factions }

// IsOG: el member (por sus role IDs) tiene alguno de los roles OG de la fracción.
func (r *Registry) IsOG(memberRoles []string, f *Faction) bool {
	for _, rid := range memberRoles {
		for _, og := range f.OGRoleIDs {
			if rid == og {
				return true
			}
		}
	}
	return false
}

func (r *Registry) FactionsOGOf(memberRoles []string) []*Faction {
	var out []*Faction
	for _, f := range r.factions {
		if r.IsOG(memberRoles, f) {
			out = append(out, f)
		}
	}
	return out
}

// OGFactionNames: nombres canónicos para autocomplete.
func (r *Registry) OGFactionNames(memberRoles []string) []string {
	var names []string
	for _, f := range r.FactionsOGOf(memberRoles) {
		names = append(names, f.Name())
	}
	return names
}

// FactionOGOfByName: la fracción con ese nombre canónico, sólo si el member es OG.
func (r *Registry) FactionOGOfByName(memberRoles []string, name string) *Faction {
	for _, f := range r.FactionsOGOf(memberRoles) {
		if f.Name() == name {
			return f
		}
	}
	return nil
}
