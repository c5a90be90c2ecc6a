// Package upload publishes single files to a public S3 bucket.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/prompt"
)

// Store is the bucket the service writes to; *s3infra.Store implements it.
type Store interface {
	Bucket() string
	CheckAccess(ctx context.Context) error
	Exists(ctx context.Context, key string) (bool, error)
	PutPublic(ctx context.Context, key string, r io.Reader, contentType string) error
}

// Options describes one upload.
type Options struct {
	File   string
	Name   string // object key; empty means prompt or basename
	Prompt bool
	Yes    bool
}

// Result is what was uploaded and where it can be fetched.
type Result struct {
	Key         string
	ContentType string
	URLs        []string
}

type Service interface {
	Upload(ctx context.Context, opts Options) (*Result, error)
}

type service struct {
	store    Store
	prompter *prompt.Prompter
}

func NewService(store Store, prompter *prompt.Prompter) Service {
	return &service{store: store, prompter: prompter}
}

func (s *service) Upload(ctx context.Context, opts Options) (*Result, error) {
	if opts.File == "" {
		return nil, fmt.Errorf("must specify a file to upload: %w", domain.ErrBadRequest)
	}
	f, err := os.Open(opts.File)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.File, err)
	}
	defer f.Close()

	key, err := s.resolveKey(opts)
	if err != nil {
		return nil, err
	}

	if err := s.store.CheckAccess(ctx); err != nil {
		return nil, fmt.Errorf("%w, check your AWS credentials and bucket permissions", err)
	}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists && !opts.Yes {
		ok, err := s.prompter.Confirm(fmt.Sprintf("File %s already exists in bucket %s. Overwrite?", console.Bold(key), console.Bold(s.store.Bucket())))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("upload cancelled: %w", domain.ErrAborted)
		}
	}

	ct := ContentType(key, opts.File)
	console.Header("Upload Details")
	console.Info("Source file: %s", console.Bold(opts.File))
	console.Info("Target name: %s", console.Bold(key))
	console.Info("Content-Type: %s", console.Bold(ct))

	if err := s.store.PutPublic(ctx, key, f, ct); err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	return &Result{Key: key, ContentType: ct, URLs: URLs(s.store.Bucket(), key)}, nil
}

// resolveKey picks the object key: the explicit name, then a prompted name,
// then the file's basename.
func (s *service) resolveKey(opts Options) (string, error) {
	if opts.Name != "" {
		return opts.Name, nil
	}
	base := filepath.Base(opts.File)
	if !opts.Prompt {
		return base, nil
	}
	ext := Extension(base)
	console.Println("\nUpload name %s", console.Muted(fmt.Sprintf("(will add %s unless an extension is specified)", ext)))
	name, err := s.prompter.Ask("Name", base)
	if err != nil {
		return "", err
	}
	if !strings.Contains(name, ".") {
		name += ext
	}
	return name, nil
}

// Extension is everything from the first dot of name, or ".txt" when there is none.
func Extension(name string) string {
	if i := strings.Index(name, "."); i >= 0 {
		return name[i:]
	}
	return ".txt"
}

// ContentType looks key's extension up, falls back to sniffing path, and
// adds a utf-8 charset to text and SVG types.
func ContentType(key, path string) string {
	ct := mime.TypeByExtension(filepath.Ext(key))
	if ct == "" {
		if m, err := mimetype.DetectFile(path); err == nil {
			ct = m.String()
		}
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	if base, _, err := mime.ParseMediaType(ct); err == nil {
		ct = base
	}
	if strings.HasPrefix(ct, "text/") || ct == "image/svg+xml" {
		ct += "; charset=utf-8"
	}
	return ct
}

// URLs are the path-style and virtual-hosted URLs of key.
func URLs(bucket, key string) []string {
	return []string{
		fmt.Sprintf("https://s3.amazonaws.com/%s/%s", bucket, key),
		fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key),
	}
}

// FileArg picks the file to upload from --file or the single positional
// argument. Anything beyond one file is rejected.
func FileArg(flag string, args []string) (string, error) {
	switch {
	case len(args) > 1 || (flag != "" && len(args) > 0):
		return "", fmt.Errorf("found extra arguments, can only upload one file at a time: %w", domain.ErrBadRequest)
	case flag != "":
		return flag, nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("must specify a file to upload: %w", domain.ErrBadRequest)
	}
}
