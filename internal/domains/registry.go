// Package domains maps stable string domain names onto the small integer
// domain indices idgen.Allocator actually allocates against.
//
// Grounded on the teacher repository's examples/sharding/main.go, which
// picks a shard index by hashing an identifier. Here a name's domain index
// is its position in the operator-supplied list, not a hash; xxhash (a
// dependency the teacher's go.mod carries but never exercises outside its
// own examples, used rather than the teacher's fnv) only computes the
// registry's Checksum.
package domains

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Registry assigns each configured domain name a deterministic index in
// [0, len(names)), preserving the order names were configured in so an
// operator's domain_names list maps predictably onto domain indices.
type Registry struct {
	byName  map[string]uint64
	byIndex []string
}

// NewRegistry builds a Registry from an ordered list of domain names. Empty
// or duplicate names are rejected.
func NewRegistry(names []string) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]uint64, len(names)),
		byIndex: make([]string, len(names)),
	}
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("domains: empty domain name at position %d", i)
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("domains: duplicate domain name %q", name)
		}
		r.byName[name] = uint64(i)
		r.byIndex[i] = name
	}
	return r, nil
}

// Index returns the domain index assigned to name.
func (r *Registry) Index(name string) (uint64, bool) {
	idx, ok := r.byName[name]
	return idx, ok
}

// Name returns the name assigned to a domain index, or "" if the index has
// no configured name (callers fall back to the numeric index in that case).
func (r *Registry) Name(index uint64) string {
	if index >= uint64(len(r.byIndex)) {
		return ""
	}
	return r.byIndex[index]
}

// Len returns the number of registered names.
func (r *Registry) Len() int { return len(r.byIndex) }

// Checksum returns a stable xxhash digest of the registry's name-to-index
// assignment, so operators can confirm two idgend processes agree on the
// same domain_names configuration without comparing the full list.
func (r *Registry) Checksum() uint64 {
	h := xxhash.New()
	for _, name := range r.byIndex {
		_, _ = h.WriteString(name)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
