package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Progress is a group of terminal download bars keyed by file name.
type Progress struct {
	mu        sync.Mutex
	opts      []mpb.ContainerOption
	container *mpb.Progress
	bars      map[string]*mpb.Bar
}

// WithOutput sets the output for the progress container.
func WithOutput(w io.Writer) func() mpb.ContainerOption {
	return func() mpb.ContainerOption {
		return mpb.WithOutput(w)
	}
}

// WithRefreshRate sets the refresh rate for the progress container.
func WithRefreshRate(refreshRate time.Duration) func() mpb.ContainerOption {
	return func() mpb.ContainerOption {
		return mpb.WithRefreshRate(refreshRate)
	}
}

// NewProgress creates a new progress container.
func NewProgress(opts ...func() mpb.ContainerOption) *Progress {
	containerOpts := DefaultContainerOptions()
	for _, opt := range opts {
		containerOpts = append(containerOpts, opt())
	}
	return &Progress{
		opts:      containerOpts,
		container: mpb.New(containerOpts...),
		bars:      make(map[string]*mpb.Bar),
	}
}

// DefaultContainerOptions returns the default container options for the progress container.
func DefaultContainerOptions() []mpb.ContainerOption {
	return []mpb.ContainerOption{
		mpb.WithOutput(os.Stderr),
		mpb.WithRefreshRate(150 * time.Millisecond),
	}
}

// DefaultBarOptions returns the default bar options for a download bar.
func DefaultBarOptions(description string) []mpb.BarOption {
	return []mpb.BarOption{
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Spinner(spinner, decor.WCSyncSpaceR),
			decor.Name(description, decor.WCSyncSpaceR),
			decor.CountersKibiByte("%.2f/%.2f", decor.WCSyncSpace),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.EwmaSpeed(decor.SizeB1024(0), "%.2f", 30, decor.WCSyncSpace),
			decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncSpace),
		),
	}
}

// Add starts a bar for name. A total <= 0 means the size is unknown.
// Bars are completed explicitly by Done, never by reaching the total.
func (g *Progress) Add(name string, total int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	bar := g.container.AddBar(0, DefaultBarOptions(name)...)
	if total > 0 {
		bar.SetTotal(total, false)
	}
	g.bars[name] = bar
}

// Advance moves the bar for name forward by n bytes read in elapsed.
func (g *Progress) Advance(name string, n int64, elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	bar, ok := g.bars[name]
	if !ok {
		return
	}
	bar.EwmaIncrInt64(n, elapsed)
}

// Done completes the bar for name, or aborts it when the download failed.
func (g *Progress) Done(name string, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	bar, exists := g.bars[name]
	if !exists {
		return
	}
	if ok {
		bar.SetTotal(-1, true)
	} else {
		bar.Abort(true)
	}
	delete(g.bars, name)
}

// Close waits for the bars to render their final state and resets the group.
func (g *Progress) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, bar := range g.bars {
		bar.Abort(true)
	}
	g.container.Wait()
	g.bars = make(map[string]*mpb.Bar)
	g.container = mpb.New(g.opts...)
}
