package remote

import (
	"context"

	"times-go/internal/times"
)

// service exposes a times.Store as net/rpc methods. Operation errors are
// reported through the reply Status; the returned error is always nil so
// the reply body reaches the client.
type service struct {
	ctx   context.Context
	store times.Store
}

func (s *service) timesStore(tid uint64) (times.TimesStore, error) {
	return times.FindTimes(s.ctx, s.store, tid)
}

func (s *service) postStore(tid uint64) (times.PostStore, error) {
	ts, err := s.timesStore(tid)
	if err != nil {
		return nil, err
	}
	return ts.PostStore(s.ctx)
}

func (s *service) todoStore(tid uint64) (times.TodoStore, error) {
	ts, err := s.timesStore(tid)
	if err != nil {
		return nil, err
	}
	return ts.TodoStore(s.ctx)
}

func (s *service) Check(_ *NoArgs, reply *Status) error {
	if err := s.store.Check(s.ctx); err != nil {
		reply.fail(err)
	}
	return nil
}

func (s *service) List(_ *NoArgs, reply *ListReply) error {
	handles, err := s.store.Get(s.ctx)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Times = make([]times.Times, 0, len(handles))
	for _, h := range handles {
		reply.Times = append(reply.Times, h.Get())
	}
	return nil
}

func (s *service) Create(args *CreateArgs, reply *TimesReply) error {
	ts, err := s.store.Create(s.ctx, args.Title)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Times = ts.Get()
	return nil
}

func (s *service) Delete(args *TimesArgs, reply *Status) error {
	if err := s.store.Delete(s.ctx, args.TID); err != nil {
		reply.fail(err)
	}
	return nil
}

func (s *service) Update(args *UpdateTimesArgs, reply *TimesReply) error {
	ts, err := s.timesStore(args.Times.ID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	t, err := ts.Update(s.ctx, args.Times)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Times = t
	return nil
}

// OpenPosts builds the post store of a Times so index bootstrap errors
// surface when the client asks for the store.
func (s *service) OpenPosts(args *TimesArgs, reply *Status) error {
	if _, err := s.postStore(args.TID); err != nil {
		reply.fail(err)
	}
	return nil
}

func (s *service) Posts(args *TimesArgs, reply *PostsReply) error {
	ps, err := s.postStore(args.TID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	posts, err := ps.GetAll(s.ctx)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Posts = posts
	return nil
}

func (s *service) NewPost(args *NewPostArgs, reply *PostReply) error {
	ps, err := s.postStore(args.TID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	p, err := ps.Post(s.ctx, args.Text, args.File)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Post = p
	return nil
}

func (s *service) UpdatePost(args *UpdatePostArgs, reply *PostReply) error {
	ps, err := s.postStore(args.TID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	p, err := ps.Update(s.ctx, args.Post)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Post = p
	return nil
}

func (s *service) DeletePost(args *PostArgs, reply *Status) error {
	ps, err := s.postStore(args.TID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	if err := ps.Delete(s.ctx, args.PID); err != nil {
		reply.fail(err)
	}
	return nil
}

func (s *service) OpenTodos(args *TimesArgs, reply *Status) error {
	if _, err := s.todoStore(args.TID); err != nil {
		reply.fail(err)
	}
	return nil
}

func (s *service) Todos(args *TimesArgs, reply *TodosReply) error {
	tds, err := s.todoStore(args.TID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	todos, err := tds.Get(s.ctx)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Todos = todos
	return nil
}

func (s *service) NewTodo(args *NewTodoArgs, reply *TodoReply) error {
	tds, err := s.todoStore(args.TID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	td, err := tds.New(s.ctx, args.Content)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Todo = td
	return nil
}

func (s *service) DoneTodo(args *DoneArgs, reply *TodoReply) error {
	tds, err := s.todoStore(args.TID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	td, err := tds.Done(s.ctx, args.TDID, args.Done)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Todo = td
	return nil
}

func (s *service) UpdateTodo(args *UpdateTodoArgs, reply *TodoReply) error {
	tds, err := s.todoStore(args.TID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	td, err := tds.Update(s.ctx, args.Todo)
	if err != nil {
		reply.fail(err)
		return nil
	}
	reply.Todo = td
	return nil
}

func (s *service) DeleteTodo(args *TodoArgs, reply *Status) error {
	tds, err := s.todoStore(args.TID)
	if err != nil {
		reply.fail(err)
		return nil
	}
	if err := tds.Delete(s.ctx, args.TDID); err != nil {
		reply.fail(err)
	}
	return nil
}
