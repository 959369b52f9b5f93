package application

import (
	"context"
	"sort"
	"time"

	"github.com/ericfisherdev/panelctl/internal/domain/model"
)

// --- Fakes ---

type fakeStore struct {
	values    map[string]string
	deletes   int
	deleteErr error
	getErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key, plaintext string) error {
	f.values[key] = plaintext
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.values[key], nil
}

func (f *fakeStore) List(_ context.Context) ([]model.Credential, error) {
	creds := make([]model.Credential, 0, len(f.values))
	for k, v := range f.values {
		creds = append(creds, model.Credential{Key: k, Value: v, UpdatedAt: time.Unix(1700000000, 0)})
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].Key < creds[j].Key })
	return creds, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.values, key)
	return nil
}

type fakeNavigator struct {
	visits []string
	err    error
}

func (f *fakeNavigator) Navigate(_ context.Context, location string) error {
	f.visits = append(f.visits, location)
	return f.err
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(message string) {
	r.messages = append(r.messages, message)
}
