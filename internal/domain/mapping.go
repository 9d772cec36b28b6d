package domain

import "sort"

const (
	DefaultEntryFormat     = "%s -> %s"
	CertificateEntryFormat = "%s (%s)"
)

type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// NamedMapping is a labelled key/value section of a report. Entries keep
// the order they were added in and keys are unique.
type NamedMapping struct {
	Label   string
	Format  string // fmt verb pair applied to key, value; DefaultEntryFormat when empty
	Entries []Entry
}

// MappingFromEntries keeps insertion order; a repeated key keeps its first
// position and takes the last value.
func MappingFromEntries(label string, entries []Entry) NamedMapping {
	m := NamedMapping{Label: label}
	idx := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := idx[e.Key]; ok {
			m.Entries[i].Value = e.Value
			continue
		}
		idx[e.Key] = len(m.Entries)
		m.Entries = append(m.Entries, e)
	}
	return m
}

// MappingFromMap orders entries by key so output does not depend on map
// iteration.
func MappingFromMap(label string, kv map[string]string) NamedMapping {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := NamedMapping{Label: label, Entries: make([]Entry, 0, len(keys))}
	for _, k := range keys {
		m.Entries = append(m.Entries, Entry{Key: k, Value: kv[k]})
	}
	return m
}

func (m NamedMapping) WithFormat(format string) NamedMapping {
	m.Format = format
	return m
}

func (m NamedMapping) Empty() bool { return len(m.Entries) == 0 }

func (m NamedMapping) EntryFormat() string {
	if m.Format == "" {
		return DefaultEntryFormat
	}
	return m.Format
}

// CertificateMapping renders certificates as "name (thumbprint)", ordered by
// name then thumbprint.
func CertificateMapping(label string, certs []Certificate) NamedMapping {
	sorted := append([]Certificate(nil), certs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Thumbprint < sorted[j].Thumbprint
	})

	entries := make([]Entry, 0, len(sorted))
	for _, c := range sorted {
		entries = append(entries, Entry{Key: c.Name, Value: c.Thumbprint})
	}
	return MappingFromEntries(label, entries).WithFormat(CertificateEntryFormat)
}
