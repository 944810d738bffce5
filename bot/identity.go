package bot

import (
	"log"
)

// Identity describes the bot's own user. It is resolved once after connecting and never
// changes afterwards.
type Identity struct {
	Name   string
	UserID string
}

// resolveIdentity finds the bot's user by its configured name in the directory. If the directory
// does not know the name, the self user reported by the platform is used instead.
func resolveIdentity(dir directory, name string, selfID string) (*Identity, error) {
	if userID, err := dir.UserID(name); err == nil {
		if selfID != "" && selfID != userID {
			log.Printf("warning: user %s found in directory as %s, but platform reports self user %s; "+
				"replies posted as %s will not be recognized as the bot's own", name, userID, selfID, selfID)
		}
		return &Identity{Name: name, UserID: userID}, nil
	}
	if selfID == "" {
		return nil, errIdentityUnresolved
	}
	log.Printf("warning: user %s not found in directory, using self user %s reported by platform", name, selfID)
	return &Identity{Name: name, UserID: selfID}, nil
}
