package menu

import "context"

// Publisher receives every committed document state for fan-out to
// subscribed team members.
type Publisher interface {
	PublishMenu(inviteCode string, m WeeklyMenu, version int64)
}

// Service composes the menu store with the live sync publisher so that every
// successful save, by any member, is pushed to all of that team's
// subscribers. Reads pass straight through to the store.
type Service struct {
	store Store
	pub   Publisher
}

// NewService creates a menu Service.
func NewService(store Store, pub Publisher) *Service {
	return &Service{store: store, pub: pub}
}

// Load fetches the team's current document.
func (s *Service) Load(ctx context.Context, inviteCode string) (*Document, error) {
	return s.store.Load(ctx, inviteCode)
}

// Save persists the whole document and notifies subscribers on success.
func (s *Service) Save(ctx context.Context, inviteCode string, m WeeklyMenu, expectedVersion int64) (*Document, error) {
	doc, err := s.store.Save(ctx, inviteCode, m, expectedVersion)
	if err != nil {
		return nil, err
	}
	s.pub.PublishMenu(inviteCode, doc.Menu, doc.Version)
	return doc, nil
}

// UpdateSlot replaces one (day, meal) slot and notifies subscribers on success.
func (s *Service) UpdateSlot(ctx context.Context, inviteCode string, day int, meal Meal, recipeIDs []string) (*Document, error) {
	doc, err := s.store.UpdateSlot(ctx, inviteCode, day, meal, recipeIDs)
	if err != nil {
		return nil, err
	}
	s.pub.PublishMenu(inviteCode, doc.Menu, doc.Version)
	return doc, nil
}
