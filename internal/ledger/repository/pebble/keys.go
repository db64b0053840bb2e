package pebble

import (
	"encoding/binary"
	"fmt"
)

var (
	blockPrefix    = []byte{'b'}
	blockPrefixEnd = []byte{'b' + 1}
)

const blockKeyLen = 9

func blockKey(number uint64) []byte {
	key := make([]byte, blockKeyLen)
	key[0] = blockPrefix[0]
	binary.BigEndian.PutUint64(key[1:], number)
	return key
}

func decodeBlockKey(key []byte) (uint64, error) {
	if len(key) != blockKeyLen || key[0] != blockPrefix[0] {
		return 0, fmt.Errorf("malformed block key %x", key)
	}
	return binary.BigEndian.Uint64(key[1:]), nil
}
