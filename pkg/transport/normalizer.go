package transport

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrymomot/dealdocs/pkg/doctree"
	"github.com/dmitrymomot/dealdocs/pkg/environment"
	"github.com/dmitrymomot/dealdocs/pkg/logger"
	"github.com/dmitrymomot/dealdocs/pkg/raster"
)

// Resizer rasterizes an image source to a target width.
type Resizer interface {
	Resize(ctx context.Context, sourceURI string, targetWidth int) (raster.Image, error)
}

// Normalizer converts presentation trees for transport. Safe for concurrent
// use.
type Normalizer struct {
	table   *Table
	resizer Resizer
	width   int
	strict  bool
	log     *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithTable replaces the default style table.
func WithTable(t *Table) Option {
	return func(n *Normalizer) {
		if t != nil {
			n.table = t
		}
	}
}

// WithResizer enables image rasterization. Without one, images keep their
// original source.
func WithResizer(r Resizer) Option {
	return func(n *Normalizer) { n.resizer = r }
}

// WithImageWidth sets the width used for images without a target-width
// attribute.
func WithImageWidth(px int) Option {
	return func(n *Normalizer) {
		if px > 0 {
			n.width = px
		}
	}
}

// WithStrict makes unmapped kinds fail the run with ErrStyleMapping. When
// false, unmapped blocks get FallbackStyle and a warning is logged.
func WithStrict(strict bool) Option {
	return func(n *Normalizer) { n.strict = strict }
}

// WithEnvironment is strict in development and lenient in staging and
// production.
func WithEnvironment(env environment.Environment) Option {
	return WithStrict(!env.IsProduction())
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.log = l
		}
	}
}

// New creates a strict normalizer with the default style table.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		table:  DefaultTable(),
		width:  raster.DefaultWidth,
		strict: true,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Table returns the style table in use.
func (n *Normalizer) Table() *Table { return n.table }

// Normalize returns an email-safe copy of tree. The input is not modified.
func (n *Normalizer) Normalize(ctx context.Context, tree *doctree.Tree) (*doctree.Tree, error) {
	if tree == nil || tree.Root == nil {
		return nil, ErrEmptyTree
	}

	out := tree.Clone()
	if !out.Root.Transportable {
		out.Root = doctree.Container()
	}
	prune(out.Root)

	if err := n.checkKinds(ctx, out); err != nil {
		return nil, err
	}
	if err := n.rasterize(ctx, out); err != nil {
		return nil, err
	}
	n.materialize(out)

	return out, nil
}

func prune(b *doctree.Block) {
	kept := b.Children[:0]
	for _, c := range b.Children {
		if !c.Transportable {
			continue
		}
		prune(c)
		kept = append(kept, c)
	}
	clear(b.Children[len(kept):])
	b.Children = kept
	if len(b.Children) == 0 {
		b.Children = nil
	}
}

func (n *Normalizer) checkKinds(ctx context.Context, tree *doctree.Tree) error {
	err := n.table.Validate(tree.Kinds()...)
	if err == nil {
		return nil
	}
	if n.strict {
		return err
	}
	n.log.WarnContext(ctx, "applying fallback inline style", logger.Error(err))
	return nil
}

func (n *Normalizer) rasterize(ctx context.Context, tree *doctree.Tree) error {
	if n.resizer == nil {
		return nil
	}

	var images []*doctree.Block
	tree.Walk(func(b *doctree.Block) bool {
		if b.Kind == doctree.KindImage && b.Attr(doctree.AttrSrc) != "" {
			images = append(images, b)
		}
		return true
	})

	var wg sync.WaitGroup
	for _, img := range images {
		target := n.width
		if w, ok := img.IntAttr(doctree.AttrTargetWidth); ok {
			target = w
		}
		if alreadyRasterized(img, target) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.substitute(ctx, img, target)
		}()
	}
	wg.Wait()

	return ctx.Err()
}

// substitute replaces the image source with its rasterized form, or keeps
// the original source when rasterization fails.
func (n *Normalizer) substitute(ctx context.Context, img *doctree.Block, target int) {
	src := img.Attr(doctree.AttrSrc)
	res, err := n.resizer.Resize(ctx, src, target)
	if err == nil {
		img.Set(doctree.AttrSrc, res.DataURI).
			Set(doctree.AttrWidth, strconv.Itoa(res.Width)).
			Set(doctree.AttrHeight, strconv.Itoa(res.Height))
		return
	}

	var le *raster.LoadError
	if errors.As(err, &le) && le.Ref.KnownSize() {
		img.Set(doctree.AttrWidth, strconv.Itoa(le.Ref.NaturalWidth)).
			Set(doctree.AttrHeight, strconv.Itoa(le.Ref.NaturalHeight))
	}
	n.log.WarnContext(ctx, "keeping original image",
		logger.ImageSource(src), slog.Int("target_width", target), logger.Error(err))
}

// alreadyRasterized reports whether a previous run produced img for target.
func alreadyRasterized(img *doctree.Block, target int) bool {
	if !raster.IsDataURI(img.Attr(doctree.AttrSrc)) {
		return false
	}
	w, ok := img.IntAttr(doctree.AttrWidth)
	_, hasHeight := img.IntAttr(doctree.AttrHeight)
	return ok && hasHeight && w == target
}

func (n *Normalizer) materialize(tree *doctree.Tree) {
	tree.Walk(func(b *doctree.Block) bool {
		style, ok := n.table.Style(b)
		if !ok {
			style = FallbackStyle
		}
		b.Unset(doctree.AttrClass)
		if s := strings.TrimSpace(style.String()); s != "" {
			b.Set(doctree.AttrStyle, s)
		} else {
			b.Unset(doctree.AttrStyle)
		}
		return true
	})
}
