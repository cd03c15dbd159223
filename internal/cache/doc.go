// Package cache provides the bounded cache used for data derived from
// geometry, such as mesh adjacency.
//
// Keys identify the source buffers (usually through their sharing tokens),
// so geometry copies that alias the same buffers share one entry. Writers
// that change a source buffer in place delete the entry.
//
//	topo := cache.New[key, *topology](64)
//	t := topo.GetOrCreate(k, func() *topology { return build(m) })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
