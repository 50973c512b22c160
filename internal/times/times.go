package times

import "time"

// Times is a named bucket (a day, a topic) owning Posts and Todos.
type Times struct {
	ID        uint64     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// FileKind identifies how the payload of an attached File is interpreted.
type FileKind string

const (
	FileImage  FileKind = "image"
	FileText   FileKind = "text"
	FileBinary FileKind = "binary"
)

// File is an attachment embedded in a Post.
type File struct {
	Name string   `json:"name"`
	Kind FileKind `json:"kind"`
	Data []byte   `json:"data"`
}

// NewTextFile returns a text attachment.
func NewTextFile(name, text string) *File {
	return &File{Name: name, Kind: FileText, Data: []byte(text)}
}

// Text returns the payload as a string. Only meaningful for FileText.
func (f *File) Text() string {
	return string(f.Data)
}

// Post is a single entry logged in a Times.
// Tag is a weak reference to a Tag id; the Post does not own the Tag.
type Post struct {
	ID        uint64     `json:"id"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	File      *File      `json:"file,omitempty"`
	Tag       *uint64    `json:"tag,omitempty"`
}

// TodoState is the completion state of a Todo.
type TodoState int

const (
	Pending TodoState = iota
	Done
)

func (s TodoState) String() string {
	if s == Done {
		return "done"
	}
	return "pending"
}

// Todo is a task scoped to a Times. A non-nil DoneAt means completed.
type Todo struct {
	ID        uint64     `json:"id"`
	Content   string     `json:"content"`
	Detail    *string    `json:"detail,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
}

// State reports whether the todo is Pending or Done.
func (t Todo) State() TodoState {
	if t.DoneAt != nil {
		return Done
	}
	return Pending
}

// Tag is a named label referenced by Posts.
type Tag struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
