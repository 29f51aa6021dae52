package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scopogger/healthypdf/internal/types"
)

// parsePageList parses a 1-based page selection like "1,3,5-7" into page
// identities. An empty string selects every page.
func parsePageList(s string, pageCount int) ([]types.PageID, error) {
	if strings.TrimSpace(s) == "" {
		out := make([]types.PageID, pageCount)
		for i := range out {
			out[i] = types.PageID(i)
		}
		return out, nil
	}

	var out []types.PageID
	seen := make(map[types.PageID]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi := part, part
		if i := strings.IndexByte(part, '-'); i > 0 {
			lo, hi = part[:i], part[i+1:]
		}
		from, err := parsePageNum(lo, pageCount)
		if err != nil {
			return nil, err
		}
		to, err := parsePageNum(hi, pageCount)
		if err != nil {
			return nil, err
		}
		if to < from {
			return nil, fmt.Errorf("invalid page range %q", part)
		}
		for p := from; p <= to; p++ {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}

// parseRotations parses "1:90,4:-90" into per-page rotation degrees.
// Pages are 1-based; degrees must be a multiple of 90.
func parseRotations(s string, pageCount int) (map[types.PageID]int, error) {
	out := make(map[types.PageID]int)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		i := strings.IndexByte(part, ':')
		if i <= 0 {
			return nil, fmt.Errorf("invalid rotation %q, want page:degrees", part)
		}
		page, err := parsePageNum(part[:i], pageCount)
		if err != nil {
			return nil, err
		}
		deg, err := strconv.Atoi(part[i+1:])
		if err != nil || deg%90 != 0 {
			return nil, fmt.Errorf("rotation for page %d must be a multiple of 90, got %q", page+1, part[i+1:])
		}
		out[page] = types.NormalizeRotation(deg)
	}
	return out, nil
}

func parsePageNum(s string, pageCount int) (types.PageID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	if n < 1 || n > pageCount {
		return 0, fmt.Errorf("page %d out of range 1..%d", n, pageCount)
	}
	return types.PageID(n - 1), nil
}
