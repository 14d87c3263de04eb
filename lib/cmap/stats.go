package cmap

// Stats reports a snapshot of a map's live size, mirroring the
// source's DatabaseInfo/GetInfo pattern: a small value object a caller
// can log or export, rather than a streaming metrics API.
type Stats struct {
	Dim         uint8
	NDarts      int
	NUnusedDart int
	Attributes  map[string]int
}

// Stats computes a Stats snapshot. NDarts/NUnusedDart are read under
// the dart store's coarse lock (best-effort, since other goroutines
// may be allocating concurrently); Attributes is read from the
// attribute manager's own column-population counters.
func (m *Map) Stats() Stats {
	return Stats{
		Dim:         m.dim,
		NDarts:      m.darts.len(),
		NUnusedDart: m.darts.unusedCount(),
		Attributes:  m.Attrs.ColumnStats(),
	}
}
