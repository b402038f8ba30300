package photo

// Lanes splits a newest-first listing into the two slideshow tracks.
type Lanes[T any] struct {
	Recent []T
	Top    []T
}

// Partition puts the first recentCount items in Recent and the following
// topWindow items in Top. Input order is kept; negative bounds count as zero.
func Partition[T any](items []T, recentCount, topWindow int) Lanes[T] {
	recentCount = max(recentCount, 0)
	topWindow = max(topWindow, 0)

	recentEnd := min(recentCount, len(items))
	topEnd := min(recentEnd+topWindow, len(items))

	lanes := Lanes[T]{
		Recent: make([]T, recentEnd),
		Top:    make([]T, topEnd-recentEnd),
	}
	copy(lanes.Recent, items[:recentEnd])
	copy(lanes.Top, items[recentEnd:topEnd])
	return lanes
}
