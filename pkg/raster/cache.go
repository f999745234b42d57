package raster

import (
	"container/list"
	"sync"
)

type cacheKey struct {
	uri   string
	width int
}

type lruEntry struct {
	key   cacheKey
	value Image
}

// imageCache memoizes rasterized images by (source, width). Safe for
// concurrent use; the least recently used entry is evicted at capacity.
type imageCache struct {
	mu       sync.Mutex
	capacity int
	items    map[cacheKey]*list.Element
	order    *list.List
}

func newImageCache(capacity int) *imageCache {
	if capacity <= 0 {
		return nil
	}
	return &imageCache{
		capacity: capacity,
		items:    make(map[cacheKey]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *imageCache) get(key cacheKey) (Image, bool) {
	if c == nil {
		return Image{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return Image{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry).value, true
}

func (c *imageCache) put(key cacheKey, img Image) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*lruEntry).value = img
		return
	}
	c.items[key] = c.order.PushFront(&lruEntry{key: key, value: img})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).key)
	}
}

func (c *imageCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
