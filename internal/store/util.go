package store

import (
	"encoding/binary"
	"time"
)

func Uint64ToBytes(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func BytesToUint64(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func TsToBytes(ts time.Time) []byte {
	return Uint64ToBytes(uint64(ts.UnixNano()))
}

// Key joins the parts of a composite key.
func Key(prefix string, parts ...[]byte) []byte {
	key := []byte(prefix)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}
