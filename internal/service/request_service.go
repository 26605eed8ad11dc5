package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	store     domain.Store
	publisher domain.EventPublisher
	clock     Clock
	logger    *zerolog.Logger
}

func NewRequestService(store domain.Store, publisher domain.EventPublisher, clock Clock, logger *zerolog.Logger) *RequestService {
	if clock == nil {
		clock = SystemClock
	}
	return &RequestService{store: store, publisher: publisher, clock: clock, logger: logger}
}

func (s *RequestService) CreateRequest(ctx context.Context, requesterID int64, description string) (*models.RequestView, error) {
	if strings.TrimSpace(description) == "" {
		return nil, invalidArgument("description must not be blank")
	}

	req := &models.ItemRequest{RequesterID: requesterID, Description: description, Created: s.clock()}
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUser(ctx, requesterID); err != nil {
			return lookup(err, "user", requesterID)
		}
		return repo.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", req.ID).Int64("user_id", requesterID).Msg("Request created")
	publish(s.publisher, s.logger, events.EventRequestCreated, events.RequestEventPayload{
		RequestID:   req.ID,
		RequesterID: requesterID,
	})

	view := models.ToRequestView(req, nil)
	return &view, nil
}

// GetRequest returns the request with the items listed against it, newest item first.
func (s *RequestService) GetRequest(ctx context.Context, callerID, requestID int64) (*models.RequestView, error) {
	var view *models.RequestView
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUser(ctx, callerID); err != nil {
			return lookup(err, "user", callerID)
		}
		req, err := repo.GetRequest(ctx, requestID)
		if err != nil {
			return lookup(err, "request", requestID)
		}
		views, err := withItems(ctx, repo, []*models.ItemRequest{req})
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	return view, err
}

func (s *RequestService) ListOwnRequests(ctx context.Context, callerID int64) ([]models.RequestView, error) {
	var views []models.RequestView
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUser(ctx, callerID); err != nil {
			return lookup(err, "user", callerID)
		}
		reqs, err := repo.ListRequestsByRequester(ctx, callerID)
		if err != nil {
			return err
		}
		views, err = withItems(ctx, repo, reqs)
		return err
	})
	return views, err
}

// ListOtherRequests pages through other users' requests. from is rounded
// down to a whole page: the page index is from / size.
func (s *RequestService) ListOtherRequests(ctx context.Context, callerID int64, from, size int) ([]models.RequestView, error) {
	if from < 0 {
		return nil, invalidArgument("from must not be negative")
	}
	if size <= 0 {
		return nil, invalidArgument("size must be positive")
	}
	offset := (from / size) * size

	var views []models.RequestView
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUser(ctx, callerID); err != nil {
			return lookup(err, "user", callerID)
		}
		reqs, err := repo.ListRequestsExcluding(ctx, callerID, size, offset)
		if err != nil {
			return err
		}
		views, err = withItems(ctx, repo, reqs)
		return err
	})
	return views, err
}

func withItems(ctx context.Context, repo domain.Repository, reqs []*models.ItemRequest) ([]models.RequestView, error) {
	views := make([]models.RequestView, 0, len(reqs))
	if len(reqs) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	items, err := repo.ListItemsByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]*models.Item)
	for _, item := range items {
		if item.RequestID != nil {
			byRequest[*item.RequestID] = append(byRequest[*item.RequestID], item)
		}
	}

	for _, r := range reqs {
		views = append(views, models.ToRequestView(r, byRequest[r.ID]))
	}
	return views, nil
}
