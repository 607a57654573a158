package world

import "github.com/elderford/realmcore/internal/kernel"

// Platform re-exports kernel.Platform: it is process-wide immutable data,
// so the world package's copy is just a named alias rather
// than a second type the server would have to keep in sync.
type Platform = kernel.Platform
