package reviews

import (
	"math"
	"sort"
)

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortRating SortOrder = "rating"
)

func ParseSort(raw string) SortOrder {
	switch SortOrder(raw) {
	case SortOldest, SortRating:
		return SortOrder(raw)
	default:
		return SortNewest
	}
}

// Sort orders reviews in place. Rating order breaks ties by recency.
func Sort(items []*Review, order SortOrder) {
	switch order {
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	case SortRating:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Rating != items[j].Rating {
				return items[i].Rating > items[j].Rating
			}
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	}
}

// StarCount is one bar of the rating histogram.
type StarCount struct {
	Stars int `json:"stars"`
	Count int `json:"count"`
}

type Summary struct {
	Average      float64     `json:"average"`
	Total        int         `json:"total"`
	Distribution []StarCount `json:"distribution"`
}

// Summarize computes the average and the 5..1 star histogram.
func Summarize(items []*Review) Summary {
	counts := [6]int{}
	sum := 0
	for _, r := range items {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		counts[r.Rating]++
		sum += r.Rating
	}
	total := counts[1] + counts[2] + counts[3] + counts[4] + counts[5]
	s := Summary{Total: total, Distribution: make([]StarCount, 0, 5)}
	for stars := 5; stars >= 1; stars-- {
		s.Distribution = append(s.Distribution, StarCount{Stars: stars, Count: counts[stars]})
	}
	if total > 0 {
		s.Average = math.Round(float64(sum)/float64(total)*100) / 100
	}
	return s
}
