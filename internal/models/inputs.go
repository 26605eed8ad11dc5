package models

// Request bodies. Pointer fields distinguish "absent" from a zero value so
// partial updates only touch what the client sent. The validate tags are
// enforced by the gateway; the core server re-checks presence itself.

type UserInput struct {
	Name  *string `json:"name" validate:"required,notblank,max=100"`
	Email *string `json:"email" validate:"required,email"`
}

type UserPatch struct {
	Name  *string `json:"name" validate:"omitempty,notblank,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type ItemInput struct {
	Name        *string `json:"name" validate:"required,notblank,max=255"`
	Description *string `json:"description" validate:"required,notblank,max=512"`
	Available   *bool   `json:"available" validate:"required"`
	RequestID   *int64  `json:"requestId" validate:"omitempty,gt=0"`
}

type ItemPatch struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,notblank,max=512"`
	Available   *bool   `json:"available"`
}

type BookingInput struct {
	ItemID *int64     `json:"itemId" validate:"required,gt=0"`
	Start  *Timestamp `json:"start" validate:"required"`
	End    *Timestamp `json:"end" validate:"required"`
}

type CommentInput struct {
	Text string `json:"text" validate:"required,notblank,max=500"`
}

type RequestInput struct {
	Description string `json:"description" validate:"required,notblank,max=512"`
}
