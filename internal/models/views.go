package models

// Views are the JSON shapes returned to clients. The mappers below are pure.

type UserView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ItemView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"ownerId"`
	RequestID   *int64 `json:"requestId"`
}

// BookingRef exposes a booking without its window or status.
type BookingRef struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

type CommentView struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    Timestamp `json:"created"`
}

type ItemWithBookingsView struct {
	ItemView
	LastBooking *BookingRef   `json:"lastBooking"`
	NextBooking *BookingRef   `json:"nextBooking"`
	Comments    []CommentView `json:"comments"`
}

type BookingItemView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookerView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookingView struct {
	ID     int64           `json:"id"`
	Start  Timestamp       `json:"start"`
	End    Timestamp       `json:"end"`
	Status BookingStatus   `json:"status"`
	Item   BookingItemView `json:"item"`
	Booker BookerView      `json:"booker"`
}

type RequestView struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Requester   int64      `json:"requester"`
	Created     Timestamp  `json:"created"`
	Items       []ItemView `json:"items"`
}

func ToUserView(u *User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ToUserViews(users []*User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserView(u))
	}
	return out
}

func ToItemView(i *Item) ItemView {
	return ItemView{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		OwnerID:     i.OwnerID,
		RequestID:   i.RequestID,
	}
}

func ToItemViews(items []*Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, i := range items {
		out = append(out, ToItemView(i))
	}
	return out
}

func ToBookingRef(b *Booking) *BookingRef {
	if b == nil {
		return nil
	}
	return &BookingRef{ID: b.ID, BookerID: b.BookerID}
}

func ToCommentView(c *Comment) CommentView {
	return CommentView{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    NewTimestamp(c.Created),
	}
}

func ToCommentViews(comments []*Comment) []CommentView {
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, ToCommentView(c))
	}
	return out
}

func ToBookingView(b *Booking) BookingView {
	return BookingView{
		ID:     b.ID,
		Start:  NewTimestamp(b.Start),
		End:    NewTimestamp(b.End),
		Status: b.Status,
		Item:   BookingItemView{ID: b.ItemID, Name: b.ItemName},
		Booker: BookerView{ID: b.BookerID, Name: b.BookerName},
	}
}

func ToBookingViews(bookings []*Booking) []BookingView {
	out := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ToBookingView(b))
	}
	return out
}

func ToRequestView(r *ItemRequest, items []*Item) RequestView {
	return RequestView{
		ID:          r.ID,
		Description: r.Description,
		Requester:   r.RequesterID,
		Created:     NewTimestamp(r.Created),
		Items:       ToItemViews(items),
	}
}
