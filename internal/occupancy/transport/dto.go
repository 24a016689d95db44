package transport

import (
	"time"

	"github.com/google/uuid"
)

// OccupancyRowRequest is one room's stay in an upload.
type OccupancyRowRequest struct {
	RoomID       int64      `json:"roomId" validate:"required,gt=0"`
	GuestName    *string    `json:"guestName,omitempty" validate:"omitempty,max=200"`
	CheckInDate  string     `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate string     `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
	ArrivalAt    *time.Time `json:"arrivalAt,omitempty"`
	DepartureAt  *time.Time `json:"departureAt,omitempty"`
}

// CreateBatchRequest is the request body for uploading occupancy data.
type CreateBatchRequest struct {
	HotelID  int64                 `json:"hotelId" validate:"required,gt=0"`
	FileName *string               `json:"fileName,omitempty" validate:"omitempty,max=255"`
	Rows     []OccupancyRowRequest `json:"rows" validate:"required,min=1,max=5000,dive"`
}

// BatchResponse is the response body for an occupancy batch.
type BatchResponse struct {
	ID         uuid.UUID `json:"id"`
	HotelID    int64     `json:"hotelId"`
	FileName   *string   `json:"fileName,omitempty"`
	UploadedBy uuid.UUID `json:"uploadedBy"`
	FactCount  int       `json:"factCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RetractBatchResponse reports what a batch retraction did on both sides.
type RetractBatchResponse struct {
	BatchID            uuid.UUID `json:"batchId"`
	DeletedFacts       int       `json:"deletedFacts"`
	PreservedCompleted int       `json:"preservedCompleted"`
	DeletedDetails     int       `json:"deletedDetails"`
	DeletedEmptyTasks  int       `json:"deletedEmptyTasks"`
}
