package trash

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"time"

	"github.com/babarot/rim/internal/config"
	"github.com/docker/go-units"
	"github.com/gobwas/glob"
	"github.com/k1LoW/duration"
	"github.com/samber/lo"
)

// Filterable defines the interface that trashed entries must implement to be filtered
type Filterable interface {
	// GetName returns the original name of the file
	GetName() string
	// GetPath returns the current path in trash
	GetPath() string
	// GetSize returns the recorded size in bytes
	GetSize() int64
	// GetDeletedAt returns when the file was trashed
	GetDeletedAt() time.Time
}

// FilterOptions holds filtering configuration
type FilterOptions struct {
	Include config.IncludeConfig
	Exclude config.ExcludeConfig
}

// Filter applies filtering rules to a slice of items
func Filter[T Filterable](items []T, opts FilterOptions) []T {
	items = rejectByNames(items, opts.Exclude.Files)
	items = rejectByPatterns(items, opts.Exclude.Patterns)
	items = rejectByGlobs(items, opts.Exclude.Globs)
	items = rejectBySize(items, opts.Exclude.Size)
	items = filterByPeriod(items, opts.Include.Period, time.Now())
	return items
}

func rejectByNames[T Filterable](items []T, excludeFiles []string) []T {
	if len(excludeFiles) == 0 {
		return items
	}
	return lo.Reject(items, func(item T, _ int) bool {
		return slices.Contains(excludeFiles, item.GetName())
	})
}

func rejectByPatterns[T Filterable](items []T, patterns []string) []T {
	if len(patterns) == 0 {
		return items
	}
	var res []*regexp.Regexp
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			slog.Warn("ignoring invalid exclude pattern", "pattern", pattern, "error", err)
			continue
		}
		res = append(res, re)
	}
	return lo.Reject(items, func(item T, _ int) bool {
		return lo.SomeBy(res, func(re *regexp.Regexp) bool {
			return re.MatchString(item.GetName())
		})
	})
}

func rejectByGlobs[T Filterable](items []T, globs []string) []T {
	if len(globs) == 0 {
		return items
	}
	var gs []glob.Glob
	for _, g := range globs {
		compiled, err := glob.Compile(g)
		if err != nil {
			slog.Warn("ignoring invalid exclude glob", "glob", g, "error", err)
			continue
		}
		gs = append(gs, compiled)
	}
	return lo.Reject(items, func(item T, _ int) bool {
		return lo.SomeBy(gs, func(g glob.Glob) bool {
			return g.Match(item.GetName())
		})
	})
}

// rejectBySize keeps items whose size is at least size.Min and below size.Max.
// Unset or unparsable bounds are ignored.
func rejectBySize[T Filterable](items []T, size config.SizeConfig) []T {
	lower := parseSize(size.Min)
	upper := parseSize(size.Max)
	if lower <= 0 && upper <= 0 {
		return items
	}
	return lo.Filter(items, func(item T, _ int) bool {
		n := item.GetSize()
		if lower > 0 && n < lower {
			return false
		}
		if upper > 0 && n >= upper {
			return false
		}
		return true
	})
}

func parseSize(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		slog.Warn("ignoring invalid size", "size", s, "error", err)
		return 0
	}
	return n
}

func filterByPeriod[T Filterable](items []T, period int, now time.Time) []T {
	if period <= 0 {
		return items
	}

	d, err := duration.Parse(fmt.Sprintf("%d days", period))
	if err != nil {
		slog.Error("failed to parse duration", "error", err)
		return items
	}

	return lo.Filter(items, func(item T, _ int) bool {
		return now.Sub(item.GetDeletedAt()) < d
	})
}
