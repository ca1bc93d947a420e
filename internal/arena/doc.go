// Package arena provides a slot allocator with generation-checked handles.
//
// Triangulation vertices and cells reference each other through handles
// instead of pointers. A handle packs a slot index and the generation of
// the slot at allocation time, so a handle that outlives its slot resolves
// to "absent" instead of aliasing whatever was allocated into the slot later.
//
// # Safety
//
// Get reports stale handles through its boolean result. MustGet panics on a
// stale handle; callers use it where a stale handle is a broken invariant.
//
// The arena is not safe for concurrent mutation.
package arena
