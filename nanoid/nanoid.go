// Package nanoid generates short random IDs. The client uses them to tag
// each HTTP request so that log entries can be matched to server traces.
package nanoid

import (
	"crypto/rand"
	"sync"
)

// 64 URL-safe characters, so each character encodes exactly 6 bits.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"

const (
	idLength    = 21
	bytesPerID  = 16  // 21 chars x 6 bits = 126 bits
	idsPerBatch = 128 // IDs drawn from one crypto/rand read
	batchSize   = bytesPerID * idsPerBatch
)

// batch holds pre-fetched random bytes so New does not pay a crypto/rand
// syscall per ID.
type batch struct {
	data [batchSize]byte
	next int
}

var batchPool = sync.Pool{
	New: func() any {
		b := &batch{}
		if _, err := rand.Read(b.data[:]); err != nil {
			panic("nanoid: crypto/rand failed: " + err.Error())
		}
		return b
	},
}

// New returns a cryptographically random 21-character ID drawn from the
// URL-safe alphabet 0-9 a-z A-Z - _.
func New() string {
	var id [idLength]byte

	b := batchPool.Get().(*batch)
	raw := b.data[b.next*bytesPerID : (b.next+1)*bytesPerID]

	// Every 3 bytes carry 24 bits, which is exactly 4 characters:
	// char 0 takes byte 0 bits 0-5, char 1 spans bytes 0-1, char 2
	// spans bytes 1-2, char 3 takes byte 2 bits 2-7.
	out := 0
	for i := 0; i+3 <= bytesPerID; i += 3 {
		id[out] = alphabet[raw[i]&63]
		id[out+1] = alphabet[((raw[i]>>6)|(raw[i+1]<<2))&63]
		id[out+2] = alphabet[((raw[i+1]>>4)|(raw[i+2]<<4))&63]
		id[out+3] = alphabet[(raw[i+2]>>2)&63]
		out += 4
	}
	// The last byte still has 6 fresh bits for the final character.
	id[out] = alphabet[raw[bytesPerID-1]&63]

	b.next++
	if b.next >= idsPerBatch {
		b.next = 0
		if _, err := rand.Read(b.data[:]); err != nil {
			panic("nanoid: crypto/rand failed: " + err.Error())
		}
	}
	batchPool.Put(b)

	return string(id[:])
}
