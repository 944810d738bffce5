package bot

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"math/rand"
	"strings"
	"testing"
)

var testIdentity = &Identity{Name: "wikibot", UserID: "U1"}

func TestResponderShouldRespondKeywords(t *testing.T) {
	r := newTestResponder()
	for _, keyword := range keywords {
		m := newTestMessage("U2", "alguien tiene un "+keyword+" para recomendar?")
		assert.True(t, r.ShouldRespond(m, testIdentity), keyword)
	}
	assert.True(t, r.ShouldRespond(newTestMessage("U2", "Tenés algún tutorial de JS?"), testIdentity))
	assert.True(t, r.ShouldRespond(newTestMessage("U2", "LIBROS de Go?"), testIdentity))
	assert.True(t, r.ShouldRespond(newTestMessage("U2", "unoslibrosbuenos"), testIdentity))
}

func TestResponderShouldRespondBotName(t *testing.T) {
	r := newTestResponder()
	assert.True(t, r.ShouldRespond(newTestMessage("U2", "wikibot ayuda"), testIdentity))
	assert.True(t, r.ShouldRespond(newTestMessage("U2", "Hola WikiBot!"), testIdentity))
	assert.True(t, r.ShouldRespond(newTestMessage("U2", "los wikibots son geniales"), testIdentity))
	assert.False(t, r.ShouldRespond(newTestMessage("U2", "wiki bot"), testIdentity))
}

func TestResponderShouldNotRespondWithoutKeyword(t *testing.T) {
	r := newTestResponder()
	assert.False(t, r.ShouldRespond(newTestMessage("U2", "hola a todos"), testIdentity))
	assert.False(t, r.ShouldRespond(newTestMessage("U2", "la guía de estilo"), testIdentity)) // accent is not folded
}

func TestResponderShouldNotRespondToEmptyText(t *testing.T) {
	r := newTestResponder()
	assert.False(t, r.ShouldRespond(newTestMessage("U2", ""), testIdentity))
}

func TestResponderShouldNotRespondToOtherTypes(t *testing.T) {
	r := newTestResponder()
	m := newTestMessage("U2", "libros")
	m.Type = "message_changed"
	assert.False(t, r.ShouldRespond(m, testIdentity))
	m.Type = ""
	assert.False(t, r.ShouldRespond(m, testIdentity))
}

func TestResponderShouldNotRespondToSelf(t *testing.T) {
	r := newTestResponder()
	assert.False(t, r.ShouldRespond(newTestMessage("U1", "wikibot ayuda"), testIdentity))
	for _, keyword := range keywords {
		assert.False(t, r.ShouldRespond(newTestMessage("U1", keyword), testIdentity), keyword)
	}
}

func TestResponderShouldNotRespondWithoutIdentity(t *testing.T) {
	r := newTestResponder()
	assert.False(t, r.ShouldRespond(newTestMessage("U2", "libros"), nil))
	assert.False(t, r.ShouldRespond(newTestMessage("U2", "libros"), &Identity{Name: "wikibot"}))
}

func TestResponderShouldRespondInAnyChannelType(t *testing.T) {
	r := newTestResponder()
	m := newTestMessage("U2", "cursos?")
	for _, ct := range []channelType{channelTypeUnknown, channelTypeChannel, channelTypeDM} {
		m.ChannelType = ct
		assert.True(t, r.ShouldRespond(m, testIdentity))
	}
}

func TestResponderBuildReply(t *testing.T) {
	r := newTestResponder()
	reply, err := r.BuildReply(newTestMessage("U2", "Tenés algún tutorial de JS?"), newTestDirectory())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "C1", reply.Channel)
	assert.Equal(t, "general", reply.ChannelName)
	assert.True(t, strings.HasPrefix(reply.Text, "@phil "))
	assert.Contains(t, replyTemplates, strings.TrimPrefix(reply.Text, "@phil "))
}

func TestResponderBuildReplyUnknownUser(t *testing.T) {
	r := newTestResponder()
	reply, err := r.BuildReply(newTestMessage("U99", "libros"), newTestDirectory())
	assert.Nil(t, reply)
	var lookupErr *LookupError
	assert.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, lookupKindUser, lookupErr.Kind)
	assert.Equal(t, "U99", lookupErr.Key)
}

func TestResponderBuildReplyUnknownChannel(t *testing.T) {
	r := newTestResponder()
	m := newTestMessage("U2", "libros")
	m.Channel = "C99"
	reply, err := r.BuildReply(m, newTestDirectory())
	assert.Nil(t, reply)
	var lookupErr *LookupError
	assert.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, lookupKindChannel, lookupErr.Kind)
	assert.Equal(t, "channel C99 not found in directory", err.Error())
}

func TestResponderBuildReplyUniformDistribution(t *testing.T) {
	r := newTestResponder()
	dir := newTestDirectory()
	counts := make(map[string]int)
	for i := 0; i < 3000; i++ {
		reply, err := r.BuildReply(newTestMessage("U2", "libros"), dir)
		if err != nil {
			t.Fatal(err)
		}
		counts[strings.TrimPrefix(reply.Text, "@phil ")]++
	}
	assert.Len(t, counts, 3)
	for _, template := range replyTemplates {
		assert.InDelta(t, 1000, counts[template], 150, template)
	}
}

func TestReplyTemplatesVerbatim(t *testing.T) {
	assert.Len(t, replyTemplates, 3)
	assert.Equal(t, "Chequeaste nuestra Wiki? Tiene muchísimos recursos gratuitos! https://freecodecampba.org/wiki/", replyTemplates[0])
	for _, template := range replyTemplates {
		assert.True(t, strings.HasSuffix(template, " https://freecodecampba.org/wiki/"))
	}
}

func newTestResponder() *responder {
	return newResponder(rand.New(rand.NewSource(1)))
}

func newTestDirectory() *memDirectory {
	dir := newMemDirectory()
	dir.SetUser("U1", "wikibot")
	dir.SetUser("U2", "phil")
	dir.SetUser("U3", "ana")
	dir.SetChannel("C1", "general")
	dir.SetChannel("D1", "D1")
	return dir
}

func newTestMessage(user, text string) *messageEvent {
	return &messageEvent{
		ID:          "1234.5678",
		Type:        messageEventType,
		Channel:     "C1",
		ChannelType: channelTypeChannel,
		User:        user,
		Message:     text,
	}
}
