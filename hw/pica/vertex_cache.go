package pica

// VertexCacheSize is the number of entries of the post-transform vertex
// cache used by indexed draws.
const VertexCacheSize = 32

// VertexCache remembers the shader output of recently processed vertex
// indices. Entries are replaced in FIFO order.
type VertexCache struct {
	ids    [VertexCacheSize]uint32
	valid  [VertexCacheSize]bool
	output [VertexCacheSize]AttributeBuffer
	next   int
}

func (c *VertexCache) Reset() {
	c.valid = [VertexCacheSize]bool{}
	c.next = 0
}

// Lookup returns the cached output for vertex, if present.
func (c *VertexCache) Lookup(vertex uint32) (*AttributeBuffer, bool) {
	for i := range c.ids {
		if c.valid[i] && c.ids[i] == vertex {
			return &c.output[i], true
		}
	}
	return nil, false
}

// Insert stores out for vertex, evicting the oldest entry.
func (c *VertexCache) Insert(vertex uint32, out *AttributeBuffer) {
	c.ids[c.next] = vertex
	c.valid[c.next] = true
	c.output[c.next] = *out
	c.next = (c.next + 1) % VertexCacheSize
}
