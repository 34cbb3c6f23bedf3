// Package cache provides a small generic LRU cache for GPU-side objects
// derived from buffers, such as imported textures.
//
// Entries that leave the cache, whether evicted, replaced, deleted or
// cleared, are handed to an eviction callback so the owner can release the
// native resource:
//
//	textures := cache.New[uint64, *render.Texture](4, func(_ uint64, t *render.Texture) {
//	    t.Destroy()
//	})
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
