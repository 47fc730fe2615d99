package domain

// Default schedule values, used when no schedule is stored and none is configured
const (
	DefaultOpenTime        = "10:00"
	DefaultCloseTime       = "19:00"
	DefaultIntervalMinutes = 30
	DefaultCapacity        = 2
)

// Business validation constants
const (
	MinIntervalMinutes          = 5
	MaxIntervalMinutes          = 480 // 8 hours
	MinCapacity                 = 1
	MaxCapacity                 = 100
	MaxNotesLength              = 500
	MaxIssueDescriptionLength   = 2000
	MaxDeviceFieldLength        = 100
	MaxContactPhoneLength       = 32
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat   = "15:04"            // HH:MM
	DateFormat   = "2006-01-02"       // YYYY-MM-DD
	SlotIDFormat = "2006-01-02_15:04" // YYYY-MM-DD_HH:MM
)

// InactiveStatuses repair job statuses that no longer hold a seat
var InactiveStatuses = []RepairJobStatus{
	StatusCancelledByCustomer,
	StatusCancelledByShop,
}

// ActiveStatuses repair job statuses that hold a seat in their slot
var ActiveStatuses = []RepairJobStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}
