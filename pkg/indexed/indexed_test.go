package indexed

import (
	"strings"
	"testing"

	"github.com/Robogera/track/pkg/gheap"
	"github.com/stretchr/testify/assert"
)

func TestOrdering(t *testing.T) {
	h := make(gheap.Heap[Indexed[string]], 0)
	for seq, word := range []string{"a", "b", "c", "d"} {
		h.Push(NewIndexed(uint64(3-seq), word))
	}
	out := make([]string, 0)
	for !h.IsEmpty() {
		out = append(out, h.Pop().Value())
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, out)
}

func TestMap(t *testing.T) {
	i := Map(NewIndexed(7, "frame"), strings.ToUpper)
	assert.Equal(t, uint64(7), i.Seq())
	assert.Equal(t, "FRAME", i.Value())
}
