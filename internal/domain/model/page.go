package model

import (
	"bytes"
	"encoding/json"
	"math"
)

// Page is a normalised page of a paginated listing.
type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

type rawPage[T any] struct {
	Items      []T `json:"items"`
	TotalItems int `json:"total_items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	Pages      int `json:"pages"`
}

// DecodePage accepts either the paginated envelope or a bare JSON array. Missing or
// zero envelope fields fall back to the requested page/size and derived totals.
func DecodePage[T any](body []byte, page, pageSize int) (*Page[T], error) {
	var raw rawPage[T]
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw.Items); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}

	p := &Page[T]{Items: raw.Items}
	if p.Items == nil {
		p.Items = []T{}
	}
	p.Total = firstPositive(raw.TotalItems, raw.Total, len(p.Items))
	p.Page = firstPositive(raw.Page, page)
	p.PageSize = firstPositive(raw.PageSize, pageSize)
	p.TotalPages = raw.TotalPages
	if p.TotalPages <= 0 {
		p.TotalPages = raw.Pages
	}
	if p.TotalPages <= 0 && p.PageSize > 0 {
		p.TotalPages = int(math.Ceil(float64(p.Total) / float64(p.PageSize)))
	}
	return p, nil
}

// HasNext reports whether another page follows.
func (p *Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether a previous page exists.
func (p *Page[T]) HasPrev() bool { return p.Page > 1 }

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
