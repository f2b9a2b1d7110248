package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hseto/minute/internal/testutil"
)

type fakeInitializer struct {
	calls int
	err   error
}

func (f *fakeInitializer) Initialize() error {
	f.calls++
	return f.err
}

func TestInitStore_Execute(t *testing.T) {
	init := &fakeInitializer{}
	uc := NewInitStore(init, testutil.NopLogger{})

	_, err := uc.Execute(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, init.calls)
}

func TestInitStore_Execute_Error(t *testing.T) {
	init := &fakeInitializer{err: errors.New("mkdir failed")}
	uc := NewInitStore(init, testutil.NopLogger{})

	_, err := uc.Execute(context.Background())
	assert.ErrorContains(t, err, "mkdir failed")
}
