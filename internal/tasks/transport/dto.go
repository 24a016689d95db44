package transport

import (
	"time"

	"hotelops_backend/internal/tasks/domain"

	"github.com/google/uuid"
)

// GenerateTaskRequest is the request body for generating one task.
type GenerateTaskRequest struct {
	HotelID  int64  `json:"hotelId" validate:"required,gt=0"`
	TaskDate string `json:"taskDate" validate:"required,datetime=2006-01-02"`
	TaskType string `json:"taskType" validate:"required,oneof=in_house arrival departure"`
}

// GenerateDailyRequest is the request body for generating all three task
// types for one hotel and date.
type GenerateDailyRequest struct {
	HotelID  int64  `json:"hotelId" validate:"required,gt=0"`
	TaskDate string `json:"taskDate" validate:"required,datetime=2006-01-02"`
}

// CompleteDetailRequest is the request body for completing a room inspection.
type CompleteDetailRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// MarkDNDRequest is the request body for recording a do-not-disturb check.
type MarkDNDRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// BoardQuery is the query parameter set shared by the task board endpoints.
type BoardQuery struct {
	HotelID int64  `form:"hotelId" validate:"required,gt=0"`
	Date    string `form:"date" validate:"required,datetime=2006-01-02"`
}

// TaskResponse is the response body for a task aggregate.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	HotelID     int64      `json:"hotelId"`
	TaskDate    string     `json:"taskDate"`
	TaskType    string     `json:"taskType"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RoomCount   int        `json:"roomCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// GenerateTaskResponse reports the outcome of one generation attempt. Created
// is false both when the task already existed and when no occupancy covered
// the date; Task is nil only in the latter case.
type GenerateTaskResponse struct {
	Task    *TaskResponse `json:"task,omitempty"`
	Created bool          `json:"created"`
}

// GenerateDailyResponse reports the outcome of a full daily generation run.
type GenerateDailyResponse struct {
	HotelID  int64                  `json:"hotelId"`
	TaskDate string                 `json:"taskDate"`
	Results  []GenerateTaskResponse `json:"results"`
}

// DetailResponse is the response body for a single room inspection.
type DetailResponse struct {
	ID             uuid.UUID  `json:"id"`
	TaskID         uuid.UUID  `json:"taskId"`
	RoomID         int64      `json:"roomId"`
	SourceRecordID *int64     `json:"sourceRecordId,omitempty"`
	SourceDeleted  bool       `json:"sourceDeleted"`
	Status         string     `json:"status"`
	DNDCount       int        `json:"dndCount"`
	MinChecksMet   bool       `json:"minChecksMet"`
	LastDNDAt      *time.Time `json:"lastDndAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	PriorityRank   *int       `json:"priorityRank,omitempty"`
	ScheduledAt    *time.Time `json:"scheduledAt,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// BoardDetailResponse is a detail on a per-status board, annotated with the
// task type it belongs to. Open boards carry a countdown for scheduled rooms;
// the DND board carries each room's check history.
type BoardDetailResponse struct {
	DetailResponse
	TaskType  string                  `json:"taskType"`
	Countdown *domain.CountdownResult `json:"countdown,omitempty"`
	Checks    []DNDCheckResponse      `json:"checks,omitempty"`
}

// DNDCheckResponse is one do-not-disturb check record.
type DNDCheckResponse struct {
	ID        uuid.UUID `json:"id"`
	CheckedBy uuid.UUID `json:"checkedBy"`
	Note      *string   `json:"note,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// StatusLogResponse is one entry of a detail's transition history.
type StatusLogResponse struct {
	ID         uuid.UUID `json:"id"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	ChangedBy  uuid.UUID `json:"changedBy"`
	Note       *string   `json:"note,omitempty"`
	ChangedAt  time.Time `json:"changedAt"`
}

// DetailHistoryResponse bundles a detail with its full audit trail.
type DetailHistoryResponse struct {
	Detail        DetailResponse      `json:"detail"`
	StatusChanges []StatusLogResponse `json:"statusChanges"`
	DNDChecks     []DNDCheckResponse  `json:"dndChecks"`
}

// CountdownResponse reports remaining time until a detail's scheduled event.
type CountdownResponse struct {
	DetailID    uuid.UUID              `json:"detailId"`
	RoomID      int64                  `json:"roomId"`
	ScheduledAt time.Time              `json:"scheduledAt"`
	Countdown   domain.CountdownResult `json:"countdown"`
}

// TypeSummaryResponse aggregates one task type's progress.
type TypeSummaryResponse struct {
	TaskType          string     `json:"taskType"`
	Status            string     `json:"status"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	TotalRooms        int        `json:"totalRooms"`
	Completed         int        `json:"completed"`
	Pending           int        `json:"pending"`
	DNDPending        int        `json:"dndPending"`
	CompletionPercent float64    `json:"completionPercent"`
}

// SummaryResponse is the per-date progress overview across task types.
type SummaryResponse struct {
	HotelID           int64                 `json:"hotelId"`
	Date              string                `json:"date"`
	Types             []TypeSummaryResponse `json:"types"`
	TotalRooms        int                   `json:"totalRooms"`
	Completed         int                   `json:"completed"`
	CompletionPercent float64               `json:"completionPercent"`
}
