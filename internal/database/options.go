package database

import (
	"time"

	"golang.org/x/text/language"

	"fsindex/internal/pool"
)

// DefaultProgressInterval is the minimum time between two progress callbacks
// during a scan.
const DefaultProgressInterval = 100 * time.Millisecond

// options holds handle tuning knobs.
type options struct {
	blockSize        int
	sortWorkers      int
	locale           language.Tag
	progressInterval time.Duration
}

// Option configures a Database.
type Option func(*options)

func defaultOptions() options {
	return options{
		blockSize:        pool.DefaultBlockSize,
		locale:           language.Und,
		progressInterval: DefaultProgressInterval,
	}
}

// WithBlockSize sets the number of entries per pool block.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithSortWorkers sets the number of goroutines used to sort the flat arrays.
// Zero or negative uses runtime.NumCPU.
func WithSortWorkers(n int) Option {
	return func(o *options) {
		o.sortWorkers = n
	}
}

// WithLocale sets the collation locale used for name comparison.
func WithLocale(tag language.Tag) Option {
	return func(o *options) {
		o.locale = tag
	}
}

// WithProgressInterval sets the minimum delay between scan progress reports.
// Zero reports every visited directory.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}
