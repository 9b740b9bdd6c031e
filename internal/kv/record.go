package kv

// Record is an insertion-ordered string map. Keys keep the position of their
// first insertion; setting an existing key replaces only its value.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord creates an empty Record
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set stores value under key
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Lookup returns the value for key and whether it was present
func (r *Record) Lookup(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.values[key]
	return v, ok
}

// Get returns the value for key, or "" when absent
func (r *Record) Get(key string) string {
	v, _ := r.Lookup(key)
	return v
}

// Keys returns the keys in insertion order
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}
