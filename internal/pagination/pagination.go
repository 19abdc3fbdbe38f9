package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const DefaultPage = 1

type Options struct {
	DefaultPerPage int
	MaxPerPage     int
}

var DefaultOpts = Options{DefaultPerPage: 20, MaxPerPage: 200}

// Params is a 1-based page request.
type Params struct {
	Page    int
	PerPage int
}

func New(page, perPage int, opt Options) Params {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = opt.DefaultPerPage
	}
	if opt.MaxPerPage > 0 && perPage > opt.MaxPerPage {
		perPage = opt.MaxPerPage
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > math.MaxInt32 {
		perPage = math.MaxInt32
	}
	// Keep the offset within int32 so it cannot overflow.
	if maxPage := math.MaxInt32 / perPage; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, PerPage: perPage}
}

// FromQuery reads pageKey and the shared page_size (or per_page) parameter.
// Missing or malformed values fall back to the defaults.
func FromQuery(q url.Values, pageKey string, opt Options) Params {
	page := atoiDefault(q.Get(pageKey), DefaultPage)
	perRaw := firstNonEmpty(q.Get("page_size"), q.Get("per_page"))
	return New(page, atoiDefault(perRaw, opt.DefaultPerPage), opt)
}

func (p Params) Limit() int  { return p.PerPage }
func (p Params) Offset() int { return (p.Page - 1) * p.PerPage }

type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	NextPage   int   `json:"next_page,omitempty"`
	PrevPage   int   `json:"prev_page,omitempty"`
}

// BuildMeta reports ceil(total/perPage) pages; zero rows means zero pages.
func BuildMeta(total int64, p Params) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.PerPage)))
	}
	meta := Meta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    p.Page > 1,
		HasNext:    totalPages > 0 && p.Page < totalPages,
	}
	if meta.HasPrev {
		meta.PrevPage = p.Page - 1
	}
	if meta.HasNext {
		meta.NextPage = p.Page + 1
	}
	return meta
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
