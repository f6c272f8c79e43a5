package memocache

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Ident returns the identity prefix for fn:
//
//	<pkgpath>:<name>:          plain functions
//	<pkgpath>.<Type>:<name>:   methods (value or pointer receiver)
//
// The prefix is stable across processes for the same build and unique per
// function, so it doubles as the invalidation prefix for all of the
// function's cache entries. Method values and method expressions resolve to
// the same prefix; pointer receivers are reported without the "*".
//
// Closures and wrappers carry synthesized names ("...:func1:") that are
// stable but unhelpful; set Options.Name to override the derived prefix for
// those.
func Ident(fn any) (string, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return "", fmt.Errorf("memocache: callable required, got %T", fn)
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return "", errors.New("memocache: cannot resolve function name")
	}
	return identFromName(rf.Name())
}

func identFromName(full string) (string, error) {
	// Method values are reported with an "-fm" suffix.
	full = strings.TrimSuffix(full, "-fm")

	// full is "<pkgpath>.<qualified name>". Dots before the last slash all
	// belong to the package path, so split at the first dot after it. A
	// dotted final path element ("gopkg.in/yaml.v2") splits early and its
	// tail rides along in the owner; the assembled prefix comes out the
	// same either way.
	slash := strings.LastIndexByte(full, '/')
	dot := strings.IndexByte(full[slash+1:], '.')
	if dot < 0 {
		return "", fmt.Errorf("memocache: unexpected function name %q", full)
	}
	dot += slash + 1
	pkg := full[:dot]
	qual := full[dot+1:]

	name := qual
	owner := ""
	if i := strings.LastIndexByte(qual, '.'); i >= 0 {
		owner = qual[:i]
		name = qual[i+1:]
	}
	// Pointer receivers appear as a "(*T)" segment, not always at the start
	// of the owner; normalize to "T".
	if i := strings.Index(owner, "(*"); i >= 0 {
		if j := strings.IndexByte(owner[i+2:], ')'); j >= 0 {
			owner = owner[:i] + owner[i+2:i+2+j] + owner[i+2+j+1:]
		}
	}
	if owner == "" {
		return pkg + ":" + name + ":", nil
	}
	return pkg + "." + owner + ":" + name + ":", nil
}
