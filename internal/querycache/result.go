package querycache

import "time"

// Status is the state of a query as seen by a consumer.
type Status int

const (
	StatusPending Status = iota // no data yet
	StatusSuccess               // data present, no error
	StatusError                 // last fetch failed; Data may hold stale data
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "pending"
	}
}

// Result is a point-in-time view of one key.
type Result struct {
	Status    Status
	Data      any
	Err       error
	UpdatedAt time.Time
	Stale     bool
}

func (e *entry) result(now time.Time, staleTime time.Duration) Result {
	switch {
	case e.err != nil:
		r := Result{Status: StatusError, Err: e.err, Stale: true}
		if e.hasData {
			r.Data = e.data
			r.UpdatedAt = e.updatedAt
		}
		return r
	case e.hasData:
		return Result{
			Status:    StatusSuccess,
			Data:      e.data,
			UpdatedAt: e.updatedAt,
			Stale:     now.Sub(e.updatedAt) >= staleTime,
		}
	default:
		return Result{Status: StatusPending}
	}
}
