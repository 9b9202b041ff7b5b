package livesync

import (
	"github.com/dinnerd/dinnerd/internal/menu"
	"github.com/dinnerd/dinnerd/internal/message"
)

// MenuUpdate carries one committed weekly-menu state to subscribers.
type MenuUpdate struct {
	Menu    menu.WeeklyMenu
	Version int64
}

// MenuFeed adapts a menu-update hub to the menu service's publisher contract.
type MenuFeed struct {
	Hub *Hub[MenuUpdate]
}

// PublishMenu implements menu.Publisher.
func (f MenuFeed) PublishMenu(inviteCode string, m menu.WeeklyMenu, version int64) {
	f.Hub.Publish(inviteCode, MenuUpdate{Menu: m, Version: version})
}

// MessageUpdate carries the refreshed board view after a post. Subscribers
// receive the full recent list, so coalescing never loses a message from the
// view a client ends up rendering.
type MessageUpdate struct {
	Messages []message.Message
}

// MessageFeed adapts a message-update hub to the board service's publisher
// contract.
type MessageFeed struct {
	Hub *Hub[MessageUpdate]
}

// PublishMessages implements message.Publisher.
func (f MessageFeed) PublishMessages(inviteCode string, msgs []message.Message) {
	f.Hub.Publish(inviteCode, MessageUpdate{Messages: msgs})
}
