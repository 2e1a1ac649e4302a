//go:build !cgo

package snapshot

import "fmt"

// OpenCGO is the non-cgo build's stand-in for the cgo-accelerated backend in
// sqlite_cgo.go: callers (OpenStore, cmd/typecore's --cgo flag) can always
// reference snapshot.OpenCGO regardless of build tags, and get a descriptive
// error instead of a missing symbol when this binary was built without cgo.
func OpenCGO(path string, debug bool) (*Store, error) {
	return nil, fmt.Errorf("snapshot: cgo sqlite driver not compiled into this binary; rebuild with CGO_ENABLED=1")
}
