package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	answer string
	err    error
	system string
	user   string
}

func (f *fakeProvider) Complete(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.answer, f.err
}

func TestCleanItems(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		want   []string
	}{
		{"newlines", "汉堡\n火锅\n 烤肉 \n", []string{"汉堡", "火锅", "烤肉"}},
		{"blank lines dropped", "\n\nA\n\n\nB\n", []string{"A", "B"}},
		{"space fallback", "pizza sushi  tacos", []string{"pizza", "sushi", "tacos"}},
		{"single item no space", "pizza", []string{"pizza"}},
		{"multi line keeps spaces", "hot pot\nfried rice", []string{"hot pot", "fried rice"}},
		{"empty", "   ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanItems(tc.answer))
		})
	}
}

func TestService_Extract(t *testing.T) {
	p := &fakeProvider{answer: "A\nB"}
	s := NewService(p, "prompt", nil)

	items, err := s.Extract(context.Background(), "  A or B  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, items)
	assert.Equal(t, "prompt", p.system)
	assert.Equal(t, "A or B", p.user)
}

func TestService_ExtractErrors(t *testing.T) {
	_, err := NewService(&fakeProvider{}, "", nil).Extract(context.Background(), " \n ")
	assert.ErrorIs(t, err, ErrEmptyText)

	boom := errors.New("boom")
	_, err = NewService(&fakeProvider{err: boom}, "", nil).Extract(context.Background(), "x")
	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, boom)

	_, err = NewService(&fakeProvider{answer: "\n\n"}, "", nil).Extract(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestStub(t *testing.T) {
	s := NewService(Stub{}, "ignored", nil)

	items, err := s.Extract(context.Background(), "吃火锅还是烤肉，或者汉堡")
	require.NoError(t, err)
	assert.Equal(t, []string{"吃火锅", "烤肉", "汉堡"}, items)

	items, err = s.Extract(context.Background(), "pizza, sushi or tacos")
	require.NoError(t, err)
	assert.Equal(t, []string{"pizza", "sushi", "tacos"}, items)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Extract(ctx, "a, b")
	assert.ErrorIs(t, err, context.Canceled)
}
