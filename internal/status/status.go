package status

// Status is a task lifecycle state.
type Status string

const (
	Pending    Status = "pending"
	InProgress Status = "in-progress"
	Completed  Status = "completed"
)

// Default is the status stored when a request supplies none, or an
// invalid one, on create.
const Default = Pending

// Values returns all statuses in display order.
func Values() []Status {
	return []Status{Pending, InProgress, Completed}
}

// IsValid reports whether s is exactly one of the known status values.
// Case sensitive, no trimming.
func IsValid(s string) bool {
	switch Status(s) {
	case Pending, InProgress, Completed:
		return true
	default:
		return false
	}
}

// Label returns the human-readable label for s.
func Label(s Status) string {
	switch s {
	case Pending:
		return "Pending"
	case InProgress:
		return "In progress"
	case Completed:
		return "Completed"
	default:
		return string(s)
	}
}
