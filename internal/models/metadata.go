package models

// Metadata is an ordered mapping from field name to raw value.
// Names and values are kept in insertion order so a field can be
// addressed by position (as the graph does) or by name.
// Datasets may carry fewer fields than others; callers must check Len.
type Metadata struct {
	names  []string
	values []string

	// index maps a name to the position of its first occurrence
	index map[string]int
}

// NewMetadata builds metadata from parallel name and value slices.
// Extra entries in the longer slice are dropped.
func NewMetadata(names, values []string) Metadata {
	var md Metadata
	n := min(len(names), len(values))
	for i := 0; i < n; i++ {
		md.Add(names[i], values[i])
	}
	return md
}

// Add appends a field. A repeated name keeps its position in the
// sequence but lookups by name resolve to the first occurrence.
func (md *Metadata) Add(name, value string) {
	if md.index == nil {
		md.index = make(map[string]int)
	}
	if _, has := md.index[name]; !has {
		md.index[name] = len(md.names)
	}
	md.names = append(md.names, name)
	md.values = append(md.values, value)
}

// Len returns the number of fields
func (md *Metadata) Len() int {
	return len(md.names)
}

// Has reports whether position i is a valid field index
func (md *Metadata) Has(i int) bool {
	return i >= 0 && i < len(md.names)
}

// Name returns the name of field i, or "" if i is out of range
func (md *Metadata) Name(i int) string {
	if !md.Has(i) {
		return ""
	}
	return md.names[i]
}

// Value returns the raw value of field i, or "" if i is out of range
func (md *Metadata) Value(i int) string {
	if !md.Has(i) {
		return ""
	}
	return md.values[i]
}

// Lookup returns the value stored under name
func (md *Metadata) Lookup(name string) (string, bool) {
	i, ok := md.index[name]
	if !ok {
		return "", false
	}
	return md.values[i], true
}

// IndexOf returns the position of the first field called name, or -1
func (md *Metadata) IndexOf(name string) int {
	if i, ok := md.index[name]; ok {
		return i
	}
	return -1
}

// Names returns a copy of the field names in order
func (md *Metadata) Names() []string {
	return append([]string(nil), md.names...)
}

// Values returns a copy of the raw values in order
func (md *Metadata) Values() []string {
	return append([]string(nil), md.values...)
}
