package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factionwarden/internal/infra/storage"
)

func TestHasAnyRole(t *testing.T) {
	team := []string{"100", "200"}
	assert.True(t, hasAnyRole([]string{"5", "200"}, team))
	assert.False(t, hasAnyRole([]string{"5", "6"}, team))
	assert.False(t, hasAnyRole(nil, team))
	assert.False(t, hasAnyRole([]string{"100"}, nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hola", truncate("hola", 10))
	assert.Equal(t, "ho..", truncate("holanda", 4))
	assert.Equal(t, "ho", truncate("holanda", 2))
	assert.Equal(t, "", truncate("", 4))
}

func TestMessageURL(t *testing.T) {
	assert.Equal(t,
		"https://discord.com/channels/1/2/3",
		messageURL("1", "2", "3"))
}

func TestIsNotFound(t *testing.T) {
	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}

	assert.True(t, isNotFound(notFound))
	assert.False(t, isNotFound(forbidden))
	assert.False(t, isNotFound(assert.AnError))
	assert.False(t, isNotFound(nil))
}

// banStoreStub graba los inserts en memoria.
type banStoreStub struct {
	inserts []storage.BanRecord
}

func (b *banStoreStub) Insert(_ context.Context, rec storage.BanRecord) (int64, error) {
	b.inserts = append(b.inserts, rec)
	return int64(len(b.inserts)), nil
}

func (b *banStoreStub) CountForUser(context.Context, string) (int, error) {
	return len(b.inserts), nil
}

// discordStub responde los endpoints REST que toca el flujo de ban:
// el GET del ban existente siempre da 404 (no baneado) y el PUT
// responde con el status configurado.
type discordStub struct {
	banStatus int
}

func (d *discordStub) RoundTrip(req *http.Request) (*http.Response, error) {
	switch {
	case req.Method == http.MethodGet && strings.Contains(req.URL.Path, "/bans/"):
		return jsonResponse(http.StatusNotFound, `{"code":10026,"message":"Unknown Ban"}`), nil
	case req.Method == http.MethodPut && strings.Contains(req.URL.Path, "/bans/"):
		return jsonResponse(d.banStatus, `{}`), nil
	}
	return jsonResponse(http.StatusOK, `{}`), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newBanTestService(t *testing.T, banStatus int) (*ModService, *banStoreStub) {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	s.Client.Transport = &discordStub{banStatus: banStatus}
	require.NoError(t, s.State.GuildAdd(&discordgo.Guild{
		ID:    "g1",
		Roles: []*discordgo.Role{{ID: "5", Name: "Bürger"}},
	}))
	bans := &banStoreStub{}
	return &ModService{s: s, bans: bans, guildID: "g1", muteLogChannelID: "log"}, bans
}

func TestBanPersistsRoleSnapshot(t *testing.T) {
	m, bans := newBanTestService(t, http.StatusNoContent)
	target := &discordgo.User{ID: "u1", Username: "griefer"}
	member := &discordgo.Member{User: target, Roles: []string{"5"}}

	out, err := m.Ban(context.Background(), "actor", target, member, "Spam")
	require.NoError(t, err)
	assert.Contains(t, out, "gebannt")

	require.Len(t, bans.inserts, 1)
	rec := bans.inserts[0]
	assert.Equal(t, "actor", rec.BannerID)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, []string{"5"}, rec.RoleIDs)
	assert.Equal(t, []string{"Bürger"}, rec.RoleNames)
}

func TestBanFailureLeavesNoRecord(t *testing.T) {
	m, bans := newBanTestService(t, http.StatusInternalServerError)
	target := &discordgo.User{ID: "u1", Username: "griefer"}

	_, err := m.Ban(context.Background(), "actor", target, &discordgo.Member{User: target}, "Spam")
	require.Error(t, err)
	// si el ban de Discord falló no puede quedar fila en la DB
	assert.Empty(t, bans.inserts)
}

func TestMuteTargetDenied(t *testing.T) {
	// estado local con los roles del guild para que no haya calls a la API
	st := discordgo.NewState()
	require.NoError(t, st.GuildAdd(&discordgo.Guild{
		ID: "g1",
		Roles: []*discordgo.Role{
			{ID: "5", Permissions: 0},
			{ID: "700", Permissions: 0},
			{ID: "999", Permissions: discordgo.PermissionAdministrator},
		},
	}))
	m := &ModService{
		s:           &discordgo.Session{State: st},
		guildID:     "g1",
		teamRoleIDs: []string{"700"},
	}

	member := func(id string, bot bool, roles ...string) *discordgo.Member {
		return &discordgo.Member{User: &discordgo.User{ID: id, Bot: bot}, Roles: roles}
	}

	assert.NotEmpty(t, m.muteTargetDenied("actor", member("target", true)))
	assert.NotEmpty(t, m.muteTargetDenied("actor", member("actor", false)))
	assert.NotEmpty(t, m.muteTargetDenied("actor", member("target", false, "999")))
	assert.NotEmpty(t, m.muteTargetDenied("actor", member("target", false, "700")))
	assert.Empty(t, m.muteTargetDenied("actor", member("target", false, "5")))
}
