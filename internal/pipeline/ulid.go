package pipeline

import (
	"bytes"
	"crypto/rand"
	"sync"
	"time"
)

// Job ids are ULIDs: 48 bits of millisecond time then 80 random bits,
// Crockford base32 encoded into 26 characters so ids sort by creation time.
// Within one millisecond the random part is incremented, keeping ids
// monotonic. If the clock steps backwards the last timestamp is reused and
// incremented the same way.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	ulidMu   sync.Mutex
	ulidLast [16]byte
)

// NewID returns a new ULID.
func NewID() string {
	return newIDAt(time.Now())
}

func newIDAt(t time.Time) string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	var id [16]byte
	ms := uint64(t.UnixMilli())
	for i := 5; i >= 0; i-- {
		id[i] = byte(ms)
		ms >>= 8
	}

	if bytes.Compare(id[:6], ulidLast[:6]) <= 0 {
		id = ulidLast
		for i := 15; i >= 6; i-- {
			id[i]++
			if id[i] != 0 {
				break
			}
		}
	} else {
		_, _ = rand.Read(id[6:])
	}
	ulidLast = id
	return encodeULID(id)
}

// encodeULID writes the 128 bits five at a time, most significant first.
// 26 characters hold 130 bits, so the value is left-padded with two zero
// bits.
func encodeULID(id [16]byte) string {
	var out [26]byte
	bit := -2 // position of the current 5-bit group's top bit, in id bits
	for i := range out {
		var v byte
		for k := 0; k < 5; k++ {
			v <<= 1
			if b := bit + k; b >= 0 && id[b/8]&(0x80>>(b%8)) != 0 {
				v |= 1
			}
		}
		out[i] = crockford[v]
		bit += 5
	}
	return string(out[:])
}
