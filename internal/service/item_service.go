package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	store     domain.Store
	publisher domain.EventPublisher
	clock     Clock
	logger    *zerolog.Logger
}

func NewItemService(store domain.Store, publisher domain.EventPublisher, clock Clock, logger *zerolog.Logger) *ItemService {
	if clock == nil {
		clock = SystemClock
	}
	return &ItemService{store: store, publisher: publisher, clock: clock, logger: logger}
}

// AddItem lists a new item. A request id only links the item to the request.
func (s *ItemService) AddItem(ctx context.Context, ownerID int64, in models.ItemInput) (*models.Item, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalidArgument("name must not be blank")
	}
	if in.Description == nil || strings.TrimSpace(*in.Description) == "" {
		return nil, invalidArgument("description must not be blank")
	}
	if in.Available == nil {
		return nil, invalidArgument("available must be set")
	}

	item := &models.Item{
		OwnerID:     ownerID,
		Name:        *in.Name,
		Description: *in.Description,
		Available:   *in.Available,
		RequestID:   in.RequestID,
	}
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUser(ctx, ownerID); err != nil {
			return lookup(err, "user", ownerID)
		}
		if in.RequestID != nil {
			if _, err := repo.GetRequest(ctx, *in.RequestID); err != nil {
				return lookup(err, "request", *in.RequestID)
			}
		}
		return repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("Item created")
	publish(s.publisher, s.logger, events.EventItemCreated, itemPayload(item))
	return item, nil
}

// UpdateItem overwrites only the fields present in patch. A present name or
// description must not be blank, the same as for AddItem.
func (s *ItemService) UpdateItem(ctx context.Context, callerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalidArgument("name must not be blank")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, invalidArgument("description must not be blank")
	}

	var item *models.Item
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		it, err := s.ownedItem(ctx, repo, callerID, itemID)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			it.Name = *patch.Name
		}
		if patch.Description != nil {
			it.Description = *patch.Description
		}
		if patch.Available != nil {
			it.Available = *patch.Available
		}

		if err := repo.UpdateItem(ctx, it); err != nil {
			return err
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", itemID).Msg("Item updated")
	publish(s.publisher, s.logger, events.EventItemUpdated, itemPayload(item))
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, callerID, itemID int64) error {
	var item *models.Item
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		it, err := s.ownedItem(ctx, repo, callerID, itemID)
		if err != nil {
			return err
		}
		item = it
		return repo.DeleteItem(ctx, itemID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("item_id", itemID).Msg("Item deleted")
	publish(s.publisher, s.logger, events.EventItemDeleted, itemPayload(item))
	return nil
}

// GetItem returns one item with its comments; last/next bookings are filled for the owner only.
func (s *ItemService) GetItem(ctx context.Context, callerID, itemID int64) (*models.ItemWithBookingsView, error) {
	var view *models.ItemWithBookingsView
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		item, err := repo.GetItem(ctx, itemID)
		if err != nil {
			return lookup(err, "item", itemID)
		}
		views, err := aggregateItems(ctx, repo, []*models.Item{item}, callerID, s.clock())
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	return view, err
}

// ListOwnerItems returns every item of ownerID with last/next bookings and comments.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64) ([]models.ItemWithBookingsView, error) {
	var views []models.ItemWithBookingsView
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUser(ctx, ownerID); err != nil {
			return lookup(err, "user", ownerID)
		}
		items, err := repo.ListItemsByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		views, err = aggregateItems(ctx, repo, items, ownerID, s.clock())
		return err
	})
	return views, err
}

// Search matches available items by name or description. Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}

	var items []*models.Item
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		var err error
		items, err = repo.SearchAvailableItems(ctx, text)
		return err
	})
	if items == nil && err == nil {
		items = []*models.Item{}
	}
	return items, err
}

// AddComment requires an approved booking of the item by authorID that has already ended.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalidArgument("comment text must not be blank")
	}

	now := s.clock()
	comment := &models.Comment{ItemID: itemID, AuthorID: authorID, Text: text, Created: now}
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		author, err := repo.GetUser(ctx, authorID)
		if err != nil {
			return lookup(err, "user", authorID)
		}
		if _, err := repo.GetItem(ctx, itemID); err != nil {
			return lookup(err, "item", itemID)
		}

		finished, err := repo.HasFinishedApprovedBooking(ctx, itemID, authorID, now)
		if err != nil {
			return err
		}
		if !finished {
			return ErrCommentNotAllowed
		}

		comment.AuthorName = author.Name
		return repo.CreateComment(ctx, comment)
	})
	if err != nil {
		if err == ErrCommentNotAllowed {
			s.logger.Warn().Int64("item_id", itemID).Int64("user_id", authorID).Msg("Comment rejected, no finished booking")
		}
		return nil, err
	}

	s.logger.Info().Int64("comment_id", comment.ID).Int64("item_id", itemID).Msg("Comment added")
	publish(s.publisher, s.logger, events.EventCommentAdded, events.CommentEventPayload{
		CommentID: comment.ID,
		ItemID:    itemID,
		AuthorID:  authorID,
	})
	return comment, nil
}

func (s *ItemService) ownedItem(ctx context.Context, repo domain.Repository, callerID, itemID int64) (*models.Item, error) {
	item, err := repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, lookup(err, "item", itemID)
	}
	if item.OwnerID != callerID {
		s.logger.Warn().Int64("item_id", itemID).Int64("user_id", callerID).Msg("User is not the item owner")
		return nil, ErrNotItemOwner
	}
	return item, nil
}

func itemPayload(item *models.Item) events.ItemEventPayload {
	return events.ItemEventPayload{
		ItemID:    item.ID,
		OwnerID:   item.OwnerID,
		Available: item.Available,
		RequestID: item.RequestID,
	}
}
