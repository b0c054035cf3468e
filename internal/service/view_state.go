package service

import (
	"context"

	"storefront/internal/domain"
)

// OpenItemDialog opens the edit dialog of one line, seeded from the server values.
func (s *CartService) OpenItemDialog(itemID int) (ItemViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := domain.FindItem(s.carts, itemID)
	if !ok {
		return ItemViewState{}, ErrItemNotFound
	}
	view := &ItemViewState{
		DialogOpen:       true,
		SelectedQuantity: item.Quantity,
		NotesDraft:       item.NotesText(),
	}
	s.views[itemID] = view
	return *view, nil
}

func (s *CartService) CloseItemDialog(itemID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if view, ok := s.views[itemID]; ok {
		view.DialogOpen = false
	}
}

// SelectQuantity changes the dialog's pending quantity, clamped to at least 1.
func (s *CartService) SelectQuantity(itemID, quantity int) (ItemViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.views[itemID]
	if !ok {
		return ItemViewState{}, ErrItemNotFound
	}
	view.SelectedQuantity = max(quantity, 1)
	return *view, nil
}

func (s *CartService) DraftNotes(itemID int, text string) (ItemViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.views[itemID]
	if !ok {
		return ItemViewState{}, ErrItemNotFound
	}
	if notes := domain.NormalizeNotes(text); notes != nil {
		view.NotesDraft = *notes
	} else {
		view.NotesDraft = ""
	}
	return *view, nil
}

// ApplyItemDialog sends whatever the dialog changed and closes it on success.
func (s *CartService) ApplyItemDialog(ctx context.Context, itemID int) error {
	s.mu.RLock()
	view, hasView := s.views[itemID]
	item, hasItem := domain.FindItem(s.carts, itemID)
	var pending ItemViewState
	if hasView {
		pending = *view
	}
	s.mu.RUnlock()

	if !hasView || !hasItem {
		return ErrItemNotFound
	}

	if pending.SelectedQuantity != item.Quantity {
		if err := s.UpdateQuantity(ctx, itemID, pending.SelectedQuantity); err != nil {
			return err
		}
	}
	if pending.NotesDraft != item.NotesText() {
		if err := s.UpdateNotes(ctx, itemID, pending.NotesDraft); err != nil {
			return err
		}
	}
	s.CloseItemDialog(itemID)
	return nil
}
