package model

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/fxamacker/cbor/v2"
)

const cborTagEncoded = 24

// Byron addresses are a CBOR array of a tag-24 wrapped payload and its CRC32.
var byronPrefix = []byte{0x82, 0xd8, 0x18}

type byronAddress struct {
	_        struct{} `cbor:",toarray"`
	Payload  cbor.RawTag
	Checksum uint32
}

// ValidateAddress checks that address is a Shelley bech32 address for the network
// or a Byron base58 address.
func ValidateAddress(network Network, address string) error {
	if address == "" {
		return errors.New("address is empty")
	}

	if strings.HasPrefix(address, "addr") {
		hrp, data, err := bech32.DecodeNoLimit(address)
		if err != nil {
			return fmt.Errorf("decode bech32 address: %w", err)
		}
		if hrp != network.AddressPrefix() {
			return fmt.Errorf("address prefix %q does not match network %s", hrp, network)
		}
		if len(data) == 0 {
			return errors.New("address payload is empty")
		}
		return nil
	}

	// Byron addresses carry no network prefix.
	return validateByronAddress(address)
}

func validateByronAddress(address string) error {
	raw := base58.Decode(address)
	if len(raw) == 0 {
		return fmt.Errorf("address %q is neither bech32 nor base58", address)
	}
	if !bytes.HasPrefix(raw, byronPrefix) {
		return fmt.Errorf("address %q is not a byron address", address)
	}

	var addr byronAddress
	if err := cbor.Unmarshal(raw, &addr); err != nil {
		return fmt.Errorf("decode byron address: %w", err)
	}
	if addr.Payload.Number != cborTagEncoded {
		return fmt.Errorf("unexpected byron payload tag %d", addr.Payload.Number)
	}
	var payload []byte
	if err := cbor.Unmarshal(addr.Payload.Content, &payload); err != nil {
		return fmt.Errorf("decode byron payload: %w", err)
	}
	if crc32.ChecksumIEEE(payload) != addr.Checksum {
		return errors.New("byron address checksum mismatch")
	}
	return nil
}
