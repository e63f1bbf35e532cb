// Package darray implements a growable array with single- and
// multi-threaded sorting.
package darray

import (
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// minParallelSort is the length below which SortParallel sorts in place on
// the calling goroutine.
const minParallelSort = 4096

// Array is a dense, indexable sequence of T.
type Array[T any] struct {
	items []T
}

// New creates an empty array with room for capacity items.
func New[T any](capacity int) *Array[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Array[T]{items: make([]T, 0, capacity)}
}

// Add appends a single item.
func (a *Array[T]) Add(item T) {
	a.items = append(a.items, item)
}

// AddItems appends items in order.
func (a *Array[T]) AddItems(items ...T) {
	a.items = append(a.items, items...)
}

// Get returns the item at i.
func (a *Array[T]) Get(i int) T {
	return a.items[i]
}

// Set replaces the item at i.
func (a *Array[T]) Set(i int, item T) {
	a.items[i] = item
}

// Len returns the number of items.
func (a *Array[T]) Len() int {
	return len(a.items)
}

// Items returns the backing slice. It aliases the array and is invalidated by
// any later mutation.
func (a *Array[T]) Items() []T {
	return a.items
}

// Clear drops all items but keeps the allocated capacity.
func (a *Array[T]) Clear() {
	clear(a.items)
	a.items = a.items[:0]
}

// Sort sorts the array in place with a three-way comparator.
func (a *Array[T]) Sort(cmp func(x, y T) int) {
	slices.SortFunc(a.items, cmp)
}

// SortParallel splits the array into workers segments, sorts them
// concurrently and merges the results on the calling goroutine.
// workers <= 0 uses runtime.NumCPU.
func (a *Array[T]) SortParallel(cmp func(x, y T) int, workers int) {
	n := len(a.items)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n/2 {
		workers = n / 2
	}
	if workers <= 1 || n < minParallelSort {
		a.Sort(cmp)
		return
	}

	seg := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += seg {
		hi := min(lo+seg, n)
		part := a.items[lo:hi]
		g.Go(func() error {
			slices.SortFunc(part, cmp)
			return nil
		})
	}
	_ = g.Wait()

	src := a.items
	dst := make([]T, n)
	for width := seg; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			merge(dst[lo:hi], src[lo:mid], src[mid:hi], cmp)
		}
		src, dst = dst, src
	}
	a.items = src
}

// merge writes the ordered union of the sorted runs left and right into out.
func merge[T any](out, left, right []T, cmp func(x, y T) int) {
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if cmp(right[j], left[i]) < 0 {
			out[k] = right[j]
			j++
		} else {
			out[k] = left[i]
			i++
		}
		k++
	}
	k += copy(out[k:], left[i:])
	copy(out[k:], right[j:])
}
