package analysis

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
)

// Weekdays is the x axis of the upload schedule chart.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// PlotTitle strips every character that is not an ASCII letter or
// whitespace so titles render without missing glyphs.
func PlotTitle(title string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			return r
		case unicode.IsSpace(r):
			return r
		}
		return -1
	}, title)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// withViews returns the videos that have a view count.
func withViews(videos []record.NormalizedVideoRecord) []record.NormalizedVideoRecord {
	out := make([]record.NormalizedVideoRecord, 0, len(videos))
	for _, v := range videos {
		if v.ViewCount != nil {
			out = append(out, v)
		}
	}
	return out
}

// TopByViews returns up to n videos ordered by view count, highest first when
// desc is set and lowest first otherwise. Videos without a view count are
// ignored. Ties keep input order.
func TopByViews(videos []record.NormalizedVideoRecord, n int, desc bool) []record.NormalizedVideoRecord {
	out := withViews(videos)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return *out[i].ViewCount > *out[j].ViewCount
		}
		return *out[i].ViewCount < *out[j].ViewCount
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ViewsByChannel groups view counts by channel title. Channels come back in
// order of first appearance.
func ViewsByChannel(videos []record.NormalizedVideoRecord) ([]string, map[string][]float64) {
	var order []string
	groups := make(map[string][]float64)
	for _, v := range withViews(videos) {
		ch := str(v.ChannelTitle)
		if _, ok := groups[ch]; !ok {
			order = append(order, ch)
		}
		groups[ch] = append(groups[ch], float64(*v.ViewCount))
	}
	return order, groups
}

// Pairs returns (x, views) points for every video where both values are
// known. pick selects the x metric.
func Pairs(videos []record.NormalizedVideoRecord, pick func(record.NormalizedVideoRecord) *int64) [][2]float64 {
	var out [][2]float64
	for _, v := range videos {
		x := pick(v)
		if x == nil || v.ViewCount == nil {
			continue
		}
		out = append(out, [2]float64{float64(*x), float64(*v.ViewCount)})
	}
	return out
}

// Durations returns the known durations in seconds.
func Durations(videos []record.NormalizedVideoRecord) []float64 {
	var out []float64
	for _, v := range videos {
		if v.DurationSecs != nil {
			out = append(out, float64(*v.DurationSecs))
		}
	}
	return out
}

// DayCounts counts uploads per weekday in Weekdays order. Missing days count
// zero; unknown day names are ignored.
func DayCounts(videos []record.NormalizedVideoRecord) []int {
	idx := make(map[string]int, len(Weekdays))
	for i, d := range Weekdays {
		idx[d] = i
	}
	counts := make([]int, len(Weekdays))
	for _, v := range videos {
		if v.PublishDayName == nil {
			continue
		}
		if i, ok := idx[*v.PublishDayName]; ok {
			counts[i]++
		}
	}
	return counts
}

// WordCount is one entry of a title word frequency table.
type WordCount struct {
	Word  string
	Count int
}

// WordFrequency counts lower-cased title words after PlotTitle cleaning and
// stopword removal, returning the n most frequent. Ties sort alphabetically.
func WordFrequency(videos []record.NormalizedVideoRecord, n int) []WordCount {
	counts := make(map[string]int)
	for _, v := range videos {
		for _, w := range strings.Fields(PlotTitle(str(v.Title))) {
			w = strings.ToLower(w)
			if _, stop := stopwords[w]; stop {
				continue
			}
			counts[w]++
		}
	}

	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
