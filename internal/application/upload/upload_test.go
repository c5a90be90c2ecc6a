package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/prompt"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Bucket() string { return "bernard-public" }
func (m *mockStore) CheckAccess(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
func (m *mockStore) PutPublic(ctx context.Context, key string, r io.Reader, contentType string) error {
	b, _ := io.ReadAll(r)
	return m.Called(ctx, key, string(b), contentType).Error(0)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func quiet(t *testing.T) {
	t.Helper()
	console.SetOutput(io.Discard, io.Discard)
	t.Cleanup(func() { console.SetOutput(nil, nil) })
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".tar.gz", Extension("backup.tar.gz"))
	assert.Equal(t, ".png", Extension("pic.png"))
	assert.Equal(t, ".txt", Extension("README"))
}

func TestContentType(t *testing.T) {
	dir := t.TempDir()
	blob := filepath.Join(dir, "blob")
	require.NoError(t, os.WriteFile(blob, []byte("%PDF-1.4\n%âãÏÓ\n"), 0o644))
	text := filepath.Join(dir, "notes")
	require.NoError(t, os.WriteFile(text, []byte("just some words\n"), 0o644))

	tests := []struct {
		key, path, want string
	}{
		{"pic.png", blob, "image/png"},
		{"page.html", blob, "text/html; charset=utf-8"},
		{"logo.svg", blob, "image/svg+xml; charset=utf-8"},
		{"doc", blob, "application/pdf"},
		{"notes", text, "text/plain; charset=utf-8"},
		{"missing", filepath.Join(dir, "nope"), "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentType(tt.key, tt.path))
		})
	}
}

func TestURLs(t *testing.T) {
	assert.Equal(t, []string{
		"https://s3.amazonaws.com/b/k.png",
		"https://b.s3.amazonaws.com/k.png",
	}, URLs("b", "k.png"))
}

func TestUpload_UsesBasename(t *testing.T) {
	quiet(t)
	path := writeFile(t, "pic.png", "png-bytes")
	store := &mockStore{}
	store.On("CheckAccess", mock.Anything).Return(nil)
	store.On("Exists", mock.Anything, "pic.png").Return(false, nil)
	store.On("PutPublic", mock.Anything, "pic.png", "png-bytes", "image/png").Return(nil)

	res, err := NewService(store, prompt.New(strings.NewReader(""), io.Discard)).Upload(context.Background(), Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, "pic.png", res.Key)
	assert.Equal(t, "https://s3.amazonaws.com/bernard-public/pic.png", res.URLs[0])
	store.AssertExpectations(t)
}

func TestUpload_PromptAddsExtension(t *testing.T) {
	quiet(t)
	path := writeFile(t, "pic.png", "x")
	store := &mockStore{}
	store.On("CheckAccess", mock.Anything).Return(nil)
	store.On("Exists", mock.Anything, "holiday.png").Return(false, nil)
	store.On("PutPublic", mock.Anything, "holiday.png", "x", "image/png").Return(nil)

	p := prompt.New(strings.NewReader("holiday\n"), &bytes.Buffer{})
	res, err := NewService(store, p).Upload(context.Background(), Options{File: path, Prompt: true})
	require.NoError(t, err)
	assert.Equal(t, "holiday.png", res.Key)
}

func TestUpload_NameFlagWins(t *testing.T) {
	quiet(t)
	path := writeFile(t, "data.csv", "a,b")
	store := &mockStore{}
	store.On("CheckAccess", mock.Anything).Return(nil)
	store.On("Exists", mock.Anything, "saved.json").Return(false, nil)
	store.On("PutPublic", mock.Anything, "saved.json", "a,b", "application/json").Return(nil)

	res, err := NewService(store, prompt.New(strings.NewReader(""), io.Discard)).
		Upload(context.Background(), Options{File: path, Name: "saved.json", Prompt: true})
	require.NoError(t, err)
	assert.Equal(t, "saved.json", res.Key)
}

func TestUpload_ExistingKey(t *testing.T) {
	quiet(t)
	path := writeFile(t, "pic.png", "x")

	t.Run("declined aborts", func(t *testing.T) {
		store := &mockStore{}
		store.On("CheckAccess", mock.Anything).Return(nil)
		store.On("Exists", mock.Anything, "pic.png").Return(true, nil)

		_, err := NewService(store, prompt.New(strings.NewReader("n\n"), io.Discard)).Upload(context.Background(), Options{File: path})
		assert.ErrorIs(t, err, domain.ErrAborted)
		store.AssertNotCalled(t, "PutPublic", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("yes skips prompt", func(t *testing.T) {
		store := &mockStore{}
		store.On("CheckAccess", mock.Anything).Return(nil)
		store.On("Exists", mock.Anything, "pic.png").Return(true, nil)
		store.On("PutPublic", mock.Anything, "pic.png", "x", "image/png").Return(nil)

		_, err := NewService(store, prompt.New(strings.NewReader(""), io.Discard)).Upload(context.Background(), Options{File: path, Yes: true})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})
}

func TestUpload_BucketAccessFails(t *testing.T) {
	quiet(t)
	path := writeFile(t, "pic.png", "x")
	store := &mockStore{}
	store.On("CheckAccess", mock.Anything).Return(errors.New("access bucket bernard-public: forbidden"))

	_, err := NewService(store, nil).Upload(context.Background(), Options{File: path})
	assert.ErrorContains(t, err, "check your AWS credentials")
	store.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
}

func TestUpload_MissingFile(t *testing.T) {
	_, err := NewService(&mockStore{}, nil).Upload(context.Background(), Options{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = NewService(&mockStore{}, nil).Upload(context.Background(), Options{File: "/nonexistent/file"})
	assert.Error(t, err)
}

func TestFileArg(t *testing.T) {
	f, err := FileArg("", []string{"a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", f)

	f, err = FileArg("b.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "b.csv", f)

	for _, tc := range []struct {
		flag string
		args []string
	}{
		{"", nil},
		{"", []string{"a", "b"}},
		{"a", []string{"b", "c"}},
		{"a", []string{"b"}},
	} {
		_, err := FileArg(tc.flag, tc.args)
		assert.ErrorIs(t, err, domain.ErrBadRequest, "%q %v", tc.flag, tc.args)
	}
}
