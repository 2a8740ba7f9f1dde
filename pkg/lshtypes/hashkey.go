package lshtypes

import (
	"unsafe"

	"github.com/Voskan/lshnet/internal/unsafehelpers"
)

// hashKey reinterprets h's backing array as raw bytes and views those bytes
// as a string, with no allocation beyond the string header itself. The
// string aliases h's backing array: bucketstore.MemoryStore keeps it as a
// map key for as long as the bucket exists, so h must never be mutated
// after it has been passed to Put or PutAt. The hashes produced by
// hashfamily and passed on by lshindex are never mutated.
func hashKey(h Hash) string {
	if len(h) == 0 {
		return ""
	}
	b := unsafehelpers.ByteSliceFrom(unsafe.Pointer(&h[0]), uintptr(len(h))*unsafe.Sizeof(h[0]))
	return unsafehelpers.BytesToString(b)
}
