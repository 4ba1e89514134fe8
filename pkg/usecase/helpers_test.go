package usecase_test

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
)

// fakeHosting is an in-memory HostingClient for tests, keyed by
// "owner/name"
type fakeHosting struct {
	mu sync.Mutex

	metas     map[string]*model.RepoMeta
	languages map[string]map[string]int
	trees     map[string]*model.RepoTree
	files     map[string]map[string]string // repo -> path -> content
	total     map[string]int
	byAuthor  map[string]int // "owner/name@author"
	userRepos map[string][]model.RepoRef

	hooks         map[string][]model.HookInfo
	createHookErr map[string]error
	nextHookID    int64
	deletedHooks  []int64
}

func newFakeHosting() *fakeHosting {
	return &fakeHosting{
		metas:         map[string]*model.RepoMeta{},
		languages:     map[string]map[string]int{},
		trees:         map[string]*model.RepoTree{},
		files:         map[string]map[string]string{},
		total:         map[string]int{},
		byAuthor:      map[string]int{},
		userRepos:     map[string][]model.RepoRef{},
		hooks:         map[string][]model.HookInfo{},
		createHookErr: map[string]error{},
		nextHookID:    100,
	}
}

func (f *fakeHosting) addRepo(meta *model.RepoMeta) {
	f.metas[meta.Owner+"/"+meta.Name] = meta
}

func (f *fakeHosting) GetRepository(_ context.Context, owner, name string) (*model.RepoMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	meta, ok := f.metas[owner+"/"+name]
	if !ok {
		return nil, goerr.Wrap(types.ErrRepoNotFound, "not found", goerr.V("repo", owner+"/"+name))
	}
	return meta, nil
}

func (f *fakeHosting) ListLanguages(_ context.Context, owner, name string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.languages[owner+"/"+name], nil
}

func (f *fakeHosting) GetTree(_ context.Context, owner, name, _ string) (*model.RepoTree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if tree, ok := f.trees[owner+"/"+name]; ok {
		return tree, nil
	}
	return &model.RepoTree{}, nil
}

func (f *fakeHosting) GetFileContent(_ context.Context, owner, name, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if content, ok := f.files[owner+"/"+name][path]; ok {
		return content, nil
	}
	return "", goerr.New("no such file", goerr.V("path", path))
}

func (f *fakeHosting) CountCommits(_ context.Context, owner, name, author string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if author == "" {
		return f.total[owner+"/"+name], nil
	}
	return f.byAuthor[owner+"/"+name+"@"+author], nil
}

func (f *fakeHosting) ListUserRepos(_ context.Context, username string) ([]model.RepoRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.userRepos[username], nil
}

func (f *fakeHosting) CreateHook(_ context.Context, owner, name, url, secret string, events []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := owner + "/" + name
	if err := f.createHookErr[key]; err != nil {
		return 0, err
	}

	f.nextHookID++
	f.hooks[key] = append(f.hooks[key], model.HookInfo{
		ID:     f.nextHookID,
		URL:    url,
		Events: events,
		Active: true,
	})
	return f.nextHookID, nil
}

func (f *fakeHosting) ListHooks(_ context.Context, owner, name string) ([]model.HookInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hooks[owner+"/"+name], nil
}

func (f *fakeHosting) DeleteHook(_ context.Context, owner, name string, hookID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletedHooks = append(f.deletedHooks, hookID)
	return nil
}

// stubPipeline records pipeline dispatches and signals each one through
// a channel so tests can wait for asynchronous runs
type stubPipeline struct {
	mu      sync.Mutex
	calls   []pipelineCall
	runErr  error
	started chan pipelineCall
}

type pipelineCall struct {
	UserID  string
	Trigger model.TriggerKind
}

func newStubPipeline() *stubPipeline {
	return &stubPipeline{started: make(chan pipelineCall, 16)}
}

func (s *stubPipeline) Run(_ context.Context, userID string, trigger model.TriggerKind) error {
	call := pipelineCall{UserID: userID, Trigger: trigger}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	err := s.runErr
	s.mu.Unlock()

	s.started <- call
	return err
}

func (s *stubPipeline) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}
