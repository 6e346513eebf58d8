package model

import "time"

// Status is the user-driven workflow stage of an entry. It advances
// pending -> in_progress -> completed and wraps back to pending, so a
// finished item can always be reopened.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the three workflow stages.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the stage that follows s in the cycle.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// Eligibility is the time-based repurchase state computed at read time from
// the stored status and the target date. It is deliberately a separate axis
// from Status: an entry can sit at pending while already displaying READY.
type Eligibility string

const (
	EligibilityWaiting   Eligibility = "WAITING"
	EligibilityReady     Eligibility = "READY"
	EligibilityCompleted Eligibility = "COMPLETED"
)

// Entry represents one wash-sale tracking record: a loss sale, the date on
// which repurchase becomes safe again, and the workflow progress toward the
// confirmed buyback.
type Entry struct {
	ID            int64      `json:"id"`
	Account       string     `json:"account"`
	Tickers       string     `json:"tickers"`
	HeldIn        string     `json:"heldIn"`
	Broker        string     `json:"broker"`
	SellDate      time.Time  `json:"sellDate"`
	TargetDate    time.Time  `json:"targetDate"` // derived: sell date + 31 days, weekend-adjusted
	Comments      string     `json:"comments"`
	Status        Status     `json:"status"`
	Completed     bool       `json:"completed"`
	CompletedDate *time.Time `json:"completedDate"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Computed on read, never stored.
	DaysRemaining int         `json:"daysRemaining"`
	Eligibility   Eligibility `json:"eligibility"`
}

// EntryFilter selects which entries a list query returns.
type EntryFilter string

const (
	FilterAll        EntryFilter = "all"
	FilterWaiting    EntryFilter = "waiting"
	FilterReady      EntryFilter = "ready"
	FilterCompleted  EntryFilter = "completed"
	FilterPending    EntryFilter = "pending"
	FilterInProgress EntryFilter = "in_progress"
)

// Valid reports whether f is a known filter value.
func (f EntryFilter) Valid() bool {
	switch f {
	case FilterAll, FilterWaiting, FilterReady, FilterCompleted, FilterPending, FilterInProgress:
		return true
	}
	return false
}

// Stats holds the aggregate counts shown on the dashboard.
type Stats struct {
	Waiting     int `json:"waiting"`
	Ready       int `json:"ready"`
	DueToday    int `json:"dueToday"`
	DueThisWeek int `json:"dueThisWeek"`
	Completed   int `json:"completed"`
	Total       int `json:"total"`
}

// Brokers is the accepted broker set at the API boundary. The empty value
// exists in the selectable set but is rejected by create validation.
var Brokers = []string{"UBS", "SCHWAB", "JMS", "JANNEY", "WELLS FARGO", "MAC"}

// ValidBroker reports whether broker is one of the accepted non-empty values.
func ValidBroker(broker string) bool {
	for _, b := range Brokers {
		if broker == b {
			return true
		}
	}
	return false
}
