package progress

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressBarLifecycle(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(WithOutput(&out), WithRefreshRate(time.Millisecond))

	p.Add("de_asp.xml", 2048)
	p.Advance("de_asp.xml", 1024, time.Millisecond)
	p.Advance("de_asp.xml", 1024, time.Millisecond)
	p.Done("de_asp.xml", true)

	p.Add("fr_asp.xml", 0)
	p.Advance("fr_asp.xml", 4096, time.Millisecond)
	p.Done("fr_asp.xml", false)

	p.Close()
	assert.Empty(t, p.bars)
}

func TestProgressIgnoresUnknownBars(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(WithOutput(&out))
	p.Advance("missing", 10, time.Millisecond)
	p.Done("missing", true)
	p.Close()
}
