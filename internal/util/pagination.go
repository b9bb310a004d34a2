package util

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxResultWindow bounds from+size, matching the default
	// index.max_result_window of Elasticsearch.
	MaxResultWindow = 10000
)

// Window is a normalised page request.
type Window struct {
	Page int
	Size int
	From int
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Calculate clamps page into [1, last page of the result window] and size
// into (0, MaxPageSize], so From never overflows and From+Size never exceeds
// MaxResultWindow.
func Calculate(page, size int) Window {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	lastPage := MaxResultWindow / size
	switch {
	case page < 1:
		page = 1
	case page > lastPage:
		page = lastPage
	}
	return Window{Page: page, Size: size, From: (page - 1) * size}
}
