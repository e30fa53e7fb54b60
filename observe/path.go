package observe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var ErrInvalidPath = errors.New("invalid path")

type parsedPath struct {
	path     string
	segments []string
}

// pathCache maps the xxhash of a dotted path to its segments. Only Watch
// paths are stored, up to maxCachedPaths of them.
type pathCache map[uint64]parsedPath

const maxCachedPaths = 1024

func (sys *System) parsePath(path string, keep bool) ([]string, error) {
	key := xxhash.Sum64String(path)
	if cached, ok := sys.paths[key]; ok && cached.path == path {
		return cached.segments, nil
	}

	var segments []string
	if path != "" {
		segments = strings.Split(path, ".")
		for i, seg := range segments {
			if seg == "" {
				return nil, fmt.Errorf("%w: empty segment %d in %q", ErrInvalidPath, i, path)
			}
		}
	}

	if _, taken := sys.paths[key]; keep && !taken && len(sys.paths) < maxCachedPaths {
		sys.paths[key] = parsedPath{path: path, segments: segments}
	}
	return segments, nil
}

// Get reads a dotted path from root. Numeric segments index Sequences; a
// segment that does not resolve yields nil. Inside a tracking pass every
// field read along the way registers the active subscriber.
func (sys *System) Get(root any, path string) (any, error) {
	segments, err := sys.parsePath(path, false)
	if err != nil {
		return nil, err
	}
	return resolve(root, segments), nil
}

func resolve(root any, segments []string) any {
	if len(segments) == 0 {
		switch r := root.(type) {
		case *Record:
			r.depend()
		case *Sequence:
			r.depend()
		}
		return root
	}

	cur := root
	for _, seg := range segments {
		switch c := cur.(type) {
		case *Record:
			cur = c.Get(seg)
		case *Sequence:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil
			}
			cur = c.Get(i)
		default:
			return nil
		}
	}
	return cur
}
