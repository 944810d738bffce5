package bot

// messageEventType is the event type of a plain chat message; edits, joins and
// other message subtypes carry a different type or no text
const messageEventType = "message"

type event interface{}

// startEvent is emitted once the connection is established and the directory is loaded.
// UserID and UserName describe the bot user as reported by the platform, and may be empty.
type startEvent struct {
	UserID   string
	UserName string
}

// openEvent is emitted when the real-time connection is open
type openEvent struct{}

type messageEvent struct {
	ID          string
	Type        string
	Channel     string
	ChannelType channelType
	Thread      string
	User        string
	Message     string
}

type errorEvent struct {
	Error error
}

type channelType int

const (
	channelTypeUnknown channelType = iota
	channelTypeChannel
	channelTypeDM
)
