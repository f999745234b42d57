package clipboard

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dealdocs/pkg/payload"
)

const (
	htmlFile    = "content.html"
	plainFile   = "content.txt"
	metaFile    = "entry.json"
	entriesDir  = "entries"
	currentLink = "current"
	stagingName = ".staging-"

	// readAttempts bounds retries of a Read racing a concurrent Write.
	readAttempts = 3
)

// Dir is a development clipboard on disk. Each write is staged in its own
// directory and published by atomically replacing the "current" symlink,
// so readers always see a complete entry. Publishing and pruning are
// serialized; staging runs concurrently.
type Dir struct {
	root string
	now  func() time.Time
	mu   sync.Mutex
}

// NewDir creates the clipboard below root.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fail(err)
	}
	if err := os.MkdirAll(filepath.Join(abs, entriesDir), 0o755); err != nil {
		return nil, fail(classify(err))
	}
	return &Dir{root: abs, now: time.Now}, nil
}

func (d *Dir) Write(ctx context.Context, p payload.Payload) error {
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := Validate(p); err != nil {
		return err
	}

	e := Entry{ID: uuid.NewString(), HTML: p.HTML, PlainText: p.PlainText, CopiedAt: d.now().UTC()}
	meta, err := json.Marshal(e)
	if err != nil {
		return fail(err)
	}

	staging, err := os.MkdirTemp(filepath.Join(d.root, entriesDir), stagingName)
	if err != nil {
		return fail(classify(err))
	}
	files := map[string][]byte{
		htmlFile:  []byte(p.HTML),
		plainFile: []byte(p.PlainText),
		metaFile:  meta,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(staging, name), data, 0o644); err != nil {
			_ = os.RemoveAll(staging)
			return fail(classify(err))
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	final := filepath.Join(d.root, entriesDir, e.ID)
	if err := os.Rename(staging, final); err != nil {
		_ = os.RemoveAll(staging)
		return fail(classify(err))
	}

	link := filepath.Join(d.root, ".link-"+e.ID)
	if err := os.Symlink(filepath.Join(entriesDir, e.ID), link); err != nil {
		_ = os.RemoveAll(final)
		return fail(classify(err))
	}
	if err := os.Rename(link, filepath.Join(d.root, currentLink)); err != nil {
		_ = os.Remove(link)
		_ = os.RemoveAll(final)
		return fail(classify(err))
	}

	d.prune(e.ID)
	return nil
}

func (d *Dir) Read(ctx context.Context) (Entry, error) {
	var err error
	for range readAttempts {
		if err := ctx.Err(); err != nil {
			return Entry{}, err
		}
		var e Entry
		e, err = d.read()
		// another process pruned the entry between resolving the link
		// and reading its files
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return e, classify(err)
	}
	return Entry{}, classify(err)
}

func (d *Dir) read() (Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	target, err := os.Readlink(filepath.Join(d.root, currentLink))
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, ErrEmpty
	}
	if err != nil {
		return Entry{}, classify(err)
	}
	dir := filepath.Join(d.root, target)

	var e Entry
	meta, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal(meta, &e); err != nil {
		return Entry{}, err
	}
	htmlData, err := os.ReadFile(filepath.Join(dir, htmlFile))
	if err != nil {
		return Entry{}, err
	}
	plainData, err := os.ReadFile(filepath.Join(dir, plainFile))
	if err != nil {
		return Entry{}, err
	}
	e.HTML, e.PlainText = string(htmlData), string(plainData)
	return e, nil
}

// prune removes superseded entries. Directories still being staged by
// other writers are left alone. Failures are ignored; a later write
// retries. Callers hold d.mu.
func (d *Dir) prune(keep string) {
	entries, err := os.ReadDir(filepath.Join(d.root, entriesDir))
	if err != nil {
		return
	}
	for _, ent := range entries {
		if ent.Name() == keep || !ent.IsDir() || strings.HasPrefix(ent.Name(), stagingName) {
			continue
		}
		_ = os.RemoveAll(filepath.Join(d.root, entriesDir, ent.Name()))
	}
}

func classify(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return errors.Join(ErrPermissionDenied, err)
	}
	return err
}
