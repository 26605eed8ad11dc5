package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// aggregateItems loads approved bookings and comments for all items in two
// queries and assembles the item views. Last/next bookings are only
// resolved for items owned by callerID.
func aggregateItems(ctx context.Context, repo domain.Repository, items []*models.Item, callerID int64, now time.Time) ([]models.ItemWithBookingsView, error) {
	views := make([]models.ItemWithBookingsView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(items))
	var owned []int64
	for _, item := range items {
		ids = append(ids, item.ID)
		if item.OwnerID == callerID {
			owned = append(owned, item.ID)
		}
	}

	bookingsByItem := make(map[int64][]*models.Booking)
	if len(owned) > 0 {
		bookings, err := repo.ListApprovedBookingsForItems(ctx, owned)
		if err != nil {
			return nil, err
		}
		for _, b := range bookings {
			bookingsByItem[b.ItemID] = append(bookingsByItem[b.ItemID], b)
		}
	}

	comments, err := repo.ListCommentsForItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentsByItem := make(map[int64][]*models.Comment)
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], c)
	}

	for _, item := range items {
		view := models.ItemWithBookingsView{
			ItemView: models.ToItemView(item),
			Comments: models.ToCommentViews(commentsByItem[item.ID]),
		}
		if item.OwnerID == callerID {
			last, next := lastAndNext(bookingsByItem[item.ID], now)
			view.LastBooking = models.ToBookingRef(last)
			view.NextBooking = models.ToBookingRef(next)
		}
		views = append(views, view)
	}
	return views, nil
}

// lastAndNext picks the booking that ended most recently before now and the
// one starting soonest after now. Bookings running at now are neither.
func lastAndNext(bookings []*models.Booking, now time.Time) (last, next *models.Booking) {
	for _, b := range bookings {
		if models.StatePast.Matches(b, now) && (last == nil || b.End.After(last.End)) {
			last = b
		}
		if models.StateFuture.Matches(b, now) && (next == nil || b.Start.Before(next.Start)) {
			next = b
		}
	}
	return last, next
}
