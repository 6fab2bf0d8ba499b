package hooks

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func write(s string) RenderFunc {
	return func(w io.Writer) { _, _ = w.Write([]byte(s)) }
}

func TestBusPriorityOrder(t *testing.T) {
	b := NewBus()
	b.Register("wp_footer", 20, write("late"))
	b.Register("wp_footer", 10, write("early"))

	var buf bytes.Buffer
	b.Fire("wp_footer", &buf)
	assert.Equal(t, "earlylate", buf.String())
}

func TestBusStableTieBreak(t *testing.T) {
	b := NewBus()
	b.Register("wp_footer", 10, write("a"))
	b.Register("wp_footer", 10, write("b"))
	b.Register("wp_footer", 10, write("c"))

	var buf bytes.Buffer
	b.Fire("wp_footer", &buf)
	assert.Equal(t, "abc", buf.String())
}

func TestBusNoDedup(t *testing.T) {
	b := NewBus()
	fn := write("x")
	b.Register("wp_footer", 10, fn)
	b.Register("wp_footer", 10, fn)

	var buf bytes.Buffer
	b.Fire("wp_footer", &buf)
	assert.Equal(t, "xx", buf.String())
	assert.Equal(t, 2, b.Subscribers("wp_footer"))
}

func TestBusUnknownHookNoop(t *testing.T) {
	b := NewBus()
	var buf bytes.Buffer
	b.Fire("nothing_here", &buf)
	assert.Zero(t, buf.Len())
}

func TestBusHooksRegistrationOrder(t *testing.T) {
	b := NewBus()
	b.Register("wp_footer", 10, write("a"))
	b.Register("wp_head", 10, write("b"))
	b.Register("wp_footer", 5, write("c"))

	assert.Equal(t, []string{"wp_footer", "wp_head"}, b.Hooks())
}
