package cpchess2

import (
	"crypto/sha1"
	"fmt"
	"hash/crc32"

	"github.com/cxgboard/emu/memory"
)

const (
	kRomSize = 0x4000

	// Known good dump: 1982_nc201_newcrest_44840a14.
	kRomCRC32 = uint32(0xc3d9c1e0)
	kRomSHA1  = "4185b717a3b6fe916cc438fbdce35dcf32cab825"
)

// loadROM validates the program image against the known good dump and
// wraps it as immutable program memory. There is exactly one ROM for this
// machine so anything else is a corrupted or wrong image and fatal.
func loadROM(img []uint8) (memory.Bank, error) {
	if len(img) != kRomSize {
		return nil, fmt.Errorf("wrong ROM size. Must be %d bytes, got %d", kRomSize, len(img))
	}
	if got := crc32.ChecksumIEEE(img); got != kRomCRC32 {
		return nil, fmt.Errorf("ROM CRC32 mismatch. Got %08x and want %08x", got, kRomCRC32)
	}
	if got := fmt.Sprintf("%x", sha1.Sum(img)); got != kRomSHA1 {
		return nil, fmt.Errorf("ROM SHA1 mismatch. Got %s and want %s", got, kRomSHA1)
	}
	return memory.NewROM(img)
}
