package frame

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultTimeLayouts are tried in order when parsing timestamp cells.
// The dataset writes local timestamps with an optional fractional part.
var DefaultTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000000000",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// TimeParser parses timestamp strings against a list of candidate
// layouts. The last layout that matched is tried first, and parsed
// values are cached; bulk CSV loads repeat station timestamps heavily.
type TimeParser struct {
	layouts []string
	last    int
	cache   *lru.Cache[string, time.Time]
}

// NewTimeParser builds a parser over the given layouts, or
// DefaultTimeLayouts when none are given.
func NewTimeParser(layouts ...string) *TimeParser {
	if len(layouts) == 0 {
		layouts = DefaultTimeLayouts
	}
	cache, _ := lru.New[string, time.Time](1 << 16)
	return &TimeParser{layouts: layouts, cache: cache}
}

// Parse converts s to a time.Time, or fails if no layout matches.
func (p *TimeParser) Parse(s string) (time.Time, error) {
	if cached, ok := p.cache.Get(s); ok {
		return cached, nil
	}
	for off := 0; off < len(p.layouts); off++ {
		i := (p.last + off) % len(p.layouts)
		parsed, err := time.ParseInLocation(p.layouts[i], s, time.Local)
		if err == nil {
			p.last = i
			p.cache.Add(s, parsed)
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
