package remote

import "times-go/internal/times"

// ServiceName is the name the store service is registered under.
const ServiceName = "Times"

// Error carries a contract error across the connection. It unwraps to
// the sentinel error of its kind so errors.Is works on the client.
type Error struct {
	Kind    times.Kind `json:"kind"`
	Message string     `json:"message"`
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return times.ErrorForKind(e.Kind) }

// Status is embedded in every reply. A call whose operation failed still
// succeeds at the transport level and reports the failure in Err.
type Status struct {
	Err *Error `json:"err,omitempty"`
}

func (s *Status) status() *Status { return s }

func (s *Status) fail(err error) {
	s.Err = &Error{Kind: times.KindOf(err), Message: err.Error()}
}

type replier interface {
	status() *Status
}

type NoArgs struct{}

type TimesArgs struct {
	TID uint64 `json:"tid"`
}

type CreateArgs struct {
	Title string `json:"title"`
}

type UpdateTimesArgs struct {
	Times times.Times `json:"times"`
}

type NewPostArgs struct {
	TID  uint64      `json:"tid"`
	Text string      `json:"text"`
	File *times.File `json:"file,omitempty"`
}

type PostArgs struct {
	TID uint64 `json:"tid"`
	PID uint64 `json:"pid"`
}

type UpdatePostArgs struct {
	TID  uint64     `json:"tid"`
	Post times.Post `json:"post"`
}

type NewTodoArgs struct {
	TID     uint64 `json:"tid"`
	Content string `json:"content"`
}

type TodoArgs struct {
	TID  uint64 `json:"tid"`
	TDID uint64 `json:"tdid"`
}

type DoneArgs struct {
	TID  uint64 `json:"tid"`
	TDID uint64 `json:"tdid"`
	Done bool   `json:"done"`
}

type UpdateTodoArgs struct {
	TID  uint64     `json:"tid"`
	Todo times.Todo `json:"todo"`
}

type ListReply struct {
	Status
	Times []times.Times `json:"times"`
}

type TimesReply struct {
	Status
	Times times.Times `json:"times"`
}

type PostReply struct {
	Status
	Post times.Post `json:"post"`
}

type PostsReply struct {
	Status
	Posts []times.Post `json:"posts"`
}

type TodoReply struct {
	Status
	Todo times.Todo `json:"todo"`
}

type TodosReply struct {
	Status
	Todos []times.Todo `json:"todos"`
}
