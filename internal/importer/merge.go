package importer

import "monotributo/internal/core"

// MergeResult is the collection after a merge plus what happened to the
// batch.
type MergeResult struct {
	Invoices   []core.Invoice `json:"-"`
	Accepted   []core.Invoice `json:"accepted"`
	Duplicates int            `json:"duplicates"`
}

// Merge prepends the batch invoices whose dedup key is not already in
// existing nor earlier in the batch. Accepted rows keep their import
// order. Inputs are not modified.
func Merge(existing, batch []core.Invoice) MergeResult {
	seen := make(map[string]struct{}, len(existing)+len(batch))
	for _, inv := range existing {
		seen[inv.DedupKey()] = struct{}{}
	}

	var res MergeResult
	for _, inv := range batch {
		k := inv.DedupKey()
		if _, dup := seen[k]; dup {
			res.Duplicates++
			continue
		}
		seen[k] = struct{}{}
		res.Accepted = append(res.Accepted, inv)
	}

	res.Invoices = make([]core.Invoice, 0, len(res.Accepted)+len(existing))
	res.Invoices = append(res.Invoices, res.Accepted...)
	res.Invoices = append(res.Invoices, existing...)
	return res
}

// Prepend adds inv in front of the collection without a dedup check, the
// way manual entries are stored.
func Prepend(existing []core.Invoice, inv core.Invoice) []core.Invoice {
	out := make([]core.Invoice, 0, len(existing)+1)
	out = append(out, inv)
	return append(out, existing...)
}
