package bot

import (
	"fmt"
	"math/rand"
	"strings"
)

var (
	// keywords that mark a message as asking for learning resources, matched as lowercase substrings
	keywords = []string{
		"libro", "libros",
		"curso", "cursos",
		"tutorial", "tutoriales",
		"guia", "guias",
		"recurso", "recursos",
	}

	replyTemplates = []string{
		"Chequeaste nuestra Wiki? Tiene muchísimos recursos gratuitos! https://freecodecampba.org/wiki/",
		"Psst, tenemos una wiki con muchos recursos gratuitos complementarios (tutoriales, libros, cursos, etc). Pasate! https://freecodecampba.org/wiki/",
		"Hola! Tenemos una wiki llena de recursos gratuitos. Fijate que seguro encontrás algo que te sirva :) https://freecodecampba.org/wiki/",
	}
)

// reply is an outgoing message, ready to be handed to the connection
type reply struct {
	Channel     string
	ChannelName string
	Text        string
}

// responder decides whether a message is answered, and with what. It is not
// safe for concurrent use, since it shares a random source.
type responder struct {
	random *rand.Rand
}

func newResponder(random *rand.Rand) *responder {
	return &responder{
		random: random,
	}
}

// ShouldRespond returns true if the message is a chat message by someone other than the bot
// that mentions learning resources or the bot's name. The name is matched as a plain substring,
// so "wikibots" matches "wikibot". There is no restriction on the channel type.
func (r *responder) ShouldRespond(m *messageEvent, identity *Identity) bool {
	if m.Type != messageEventType || m.Message == "" {
		return false
	} else if identity == nil || identity.UserID == "" || m.User == identity.UserID {
		return false
	}
	text := strings.ToLower(m.Message)
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return identity.Name != "" && strings.Contains(text, strings.ToLower(identity.Name))
}

// BuildReply picks a random reply template and addresses it to the author of the message.
// It returns a *LookupError if the author or the channel are not in the directory.
func (r *responder) BuildReply(m *messageEvent, dir directory) (*reply, error) {
	template := replyTemplates[r.random.Intn(len(replyTemplates))]
	userName, err := dir.UserName(m.User)
	if err != nil {
		return nil, err
	}
	channelName, err := dir.ChannelName(m.Channel)
	if err != nil {
		return nil, err
	}
	return &reply{
		Channel:     m.Channel,
		ChannelName: channelName,
		Text:        fmt.Sprintf("@%s %s", userName, template),
	}, nil
}
