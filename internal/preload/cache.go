// Package preload keeps decoded frames ready for display.
package preload

import (
	"context"
	"image"
	"log"
	"sync"

	"github.com/ivlev/multifocus/internal/config"
	"github.com/ivlev/multifocus/internal/source"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

type status int

const (
	statusQueued status = iota
	statusLoading
	statusReady
	statusFailed
)

type entry struct {
	status status
	img    image.Image
	err    error
}

// Options control the cache's worker pool and output size.
type Options struct {
	Workers int
	// Width and Height, when both positive, are the size every image is
	// scaled to once loaded.
	Width, Height int
}

// Cache loads frame resources in the background. Ensure never blocks, and a
// reference is fetched at most once: failures are kept, not retried.
type Cache struct {
	loader source.Loader
	opts   Options

	mu      sync.Mutex
	entries map[string]*entry
	queue   []string
	wake    chan struct{}
	idle    *sync.Cond
	busy    int

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewCache starts opts.Workers loader goroutines bound to ctx.
func NewCache(ctx context.Context, loader source.Loader, opts Options) *Cache {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	c := &Cache{
		loader:  loader,
		opts:    opts,
		entries: make(map[string]*entry),
		wake:    make(chan struct{}, 1),
		cancel:  cancel,
		group:   g,
	}
	c.idle = sync.NewCond(&c.mu)

	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			c.work(ctx)
			return nil
		})
	}
	return c
}

// Ensure queues ref for loading unless it is already known.
func (c *Cache) Ensure(ref string) {
	c.mu.Lock()
	if _, ok := c.entries[ref]; ok {
		c.mu.Unlock()
		return
	}
	c.entries[ref] = &entry{status: statusQueued}
	c.queue = append(c.queue, ref)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Preload ensures every frame's resource, in sequence order.
func (c *Cache) Preload(frames []config.Frame) {
	for _, f := range frames {
		c.Ensure(f.Source)
	}
}

// Get returns the image for ref if it has finished loading.
func (c *Cache) Get(ref string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ref]
	if !ok || e.status != statusReady {
		return nil, false
	}
	return e.img, true
}

// Err returns the load error recorded for ref, if any.
func (c *Cache) Err(ref string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[ref]; ok {
		return e.err
	}
	return nil
}

// Wait blocks until nothing is queued or loading.
func (c *Cache) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.queue) > 0 || c.busy > 0 {
		c.idle.Wait()
	}
}

// Close stops the workers and waits for them to exit. Queued loads are dropped.
func (c *Cache) Close() error {
	c.cancel()
	err := c.group.Wait()

	c.mu.Lock()
	c.queue = nil
	c.idle.Broadcast()
	c.mu.Unlock()
	return err
}

func (c *Cache) work(ctx context.Context) {
	for {
		ref, ok := c.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-c.wake:
				continue
			}
		}

		img, err := c.loader.Load(ctx, ref)
		if err == nil {
			img = c.fit(img)
		} else {
			log.Printf("[!] preload: %s: %v", ref, err)
		}
		c.finish(ref, img, err)

		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Cache) next() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return "", false
	}
	ref := c.queue[0]
	c.queue = c.queue[1:]
	c.entries[ref].status = statusLoading
	c.busy++

	// Let another worker pick up the rest of the queue.
	if len(c.queue) > 0 {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
	return ref, true
}

func (c *Cache) finish(ref string, img image.Image, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[ref]
	if err != nil {
		e.status = statusFailed
		e.err = err
	} else {
		e.status = statusReady
		e.img = img
	}
	c.busy--
	if len(c.queue) == 0 && c.busy == 0 {
		c.idle.Broadcast()
	}
}

// fit stretches img to the configured viewport, the way the viewer shows it.
func (c *Cache) fit(img image.Image) image.Image {
	w, h := c.opts.Width, c.opts.Height
	if w <= 0 || h <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
