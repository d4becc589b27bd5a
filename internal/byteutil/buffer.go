// Package byteutil pools the scratch buffers response writers render into.
package byteutil

import (
	"bytes"
	"sync"
)

// Buffers larger than this are dropped instead of pooled.
const maxPooledCap = 1 << 20

var bytesBuffer = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

// GetBytesBuf returns an empty buffer from the pool.
func GetBytesBuf() *bytes.Buffer {
	p := bytesBuffer.Get().(*bytes.Buffer)
	p.Reset()
	return p
}

func PutBytesBuf(p *bytes.Buffer) {
	if p == nil || p.Cap() > maxPooledCap {
		return
	}
	bytesBuffer.Put(p)
}
