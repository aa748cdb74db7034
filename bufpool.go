package scale

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses buffers when draining an io.Reader before decoding.
// This reduces GC pressure by avoiding an allocation per ReadFrom. A 4KB
// default avoids re-allocations for common payload sizes.
var bytesBufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}
