// Package bucket groups transaction summaries under relative date labels.
package bucket

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"mywallet/internal/core"
)

const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
)

// Bucket is one labelled group of summaries.
type Bucket struct {
	Label string
	Items []core.TransactionSummary
}

// Buckets is ordered: Today, Yesterday, then ISO labels newest first.
type Buckets []Bucket

// Label returns the bucket label of d relative to today.
func Label(d, today core.Date) string {
	switch {
	case d.Equal(today.Time):
		return LabelToday
	case d.Equal(today.AddDays(-1).Time):
		return LabelYesterday
	default:
		return d.String()
	}
}

func rank(label string) int {
	switch label {
	case LabelToday:
		return 0
	case LabelYesterday:
		return 1
	}
	return 2
}

// Group buckets items by their date relative to today. Items keep their
// input order within a bucket. Undated items fall under the "" label,
// which sorts last.
func Group(items []core.TransactionSummary, today core.Date) Buckets {
	if len(items) == 0 {
		return Buckets{}
	}
	index := make(map[string]int)
	var out Buckets
	for _, it := range items {
		label := Label(it.Date, today)
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, Bucket{Label: label})
		}
		out[i].Items = append(out[i].Items, it)
	}
	slices.SortStableFunc(out, func(a, b Bucket) int {
		if ra, rb := rank(a.Label), rank(b.Label); ra != rb {
			return ra - rb
		}
		return strings.Compare(b.Label, a.Label)
	})
	return out
}

func (b Buckets) Labels() []string {
	labels := make([]string, len(b))
	for i, bk := range b {
		labels[i] = bk.Label
	}
	return labels
}

// Lookup returns the items under label.
func (b Buckets) Lookup(label string) ([]core.TransactionSummary, bool) {
	for _, bk := range b {
		if bk.Label == label {
			return bk.Items, true
		}
	}
	return nil, false
}

// Flatten returns every item in bucket order.
func (b Buckets) Flatten() []core.TransactionSummary {
	var out []core.TransactionSummary
	for _, bk := range b {
		out = append(out, bk.Items...)
	}
	return out
}

// MarshalJSON writes an object whose key order is the bucket order.
func (b Buckets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bk := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(bk.Label)
		if err != nil {
			return nil, err
		}
		items := bk.Items
		if items == nil {
			items = []core.TransactionSummary{}
		}
		val, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Page is a core.Page whose items have been bucketed.
type Page struct {
	Items         Buckets `json:"items"`
	TotalPages    int     `json:"totalPages"`
	TotalElements int64   `json:"totalElements"`
}

func EmptyPage() Page {
	return Page{Items: Buckets{}}
}

// FromPage buckets the items of p and keeps its counts.
func FromPage(p core.Page[core.TransactionSummary], today core.Date) Page {
	return Page{
		Items:         Group(p.Items, today),
		TotalPages:    p.TotalPages,
		TotalElements: p.TotalElements,
	}
}
