package abis

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/patrickmn/go-cache"
)

//go:embed *.json
var fs embed.FS

// Highest marketplace contract version with a bundled ABI
const MaxVersion uint32 = 1

var ErrVersionUnknown = errors.New("no ABI for contract version")

// Parsed ABIs are cached forever, keyed by version
var parsed = cache.New(cache.NoExpiration, 0)

// Get returns the ABI for the given marketplace contract version
func Get(version uint32) (contractAbi *abi.ABI, err error) {
	key := fmt.Sprintf("%d", version)
	if cached, ok := parsed.Get(key); ok {
		return cached.(*abi.ABI), nil
	}

	data, err := fs.ReadFile(fmt.Sprintf("marketplace_v%d.json", version))
	if err != nil {
		err = ErrVersionUnknown
		return
	}

	out, err := abi.JSON(strings.NewReader(string(data)))
	if err != nil {
		return
	}

	contractAbi = &out
	parsed.Set(key, contractAbi, cache.NoExpiration)
	return
}

// GetLatest tries versions from the highest known one downwards.
// Used when a contract's version is not known upfront.
func GetLatest() (contractAbi *abi.ABI, version uint32, err error) {
	for v := int(MaxVersion); v >= 0; v-- {
		contractAbi, err = Get(uint32(v))
		if err == nil {
			version = uint32(v)
			return
		}
	}
	err = ErrVersionUnknown
	return
}
