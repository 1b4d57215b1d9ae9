package knowledge

// Entry is one knowledge-base row.
type Entry struct {
	Category    string
	IssueLabel  string
	Remediation string
}

// Base is an immutable, in-memory knowledge base. It is built once and then
// only read, so any number of goroutines may call Lookup concurrently.
type Base struct {
	entries []Entry
}

// New builds a Base from entries. The slice is copied.
func New(entries []Entry) *Base {
	return &Base{entries: append([]Entry(nil), entries...)}
}

// Lookup filters the rows matching both category and issueLabel exactly and
// returns their distinct remediation texts in dataset order.
func (b *Base) Lookup(category, issueLabel string) []string {
	if b == nil {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, e := range b.entries {
		if e.Category != category || e.IssueLabel != issueLabel {
			continue
		}
		if _, dup := seen[e.Remediation]; dup {
			continue
		}
		seen[e.Remediation] = struct{}{}
		out = append(out, e.Remediation)
	}
	return out
}

// Len reports the number of rows loaded.
func (b *Base) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
