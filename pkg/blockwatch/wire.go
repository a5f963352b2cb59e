// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package blockwatch

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
	"google.golang.org/protobuf/encoding/protowire"
)

// accountAddressVersion prefixes an account address before base58check.
const accountAddressVersion = 1

// frame carries one already encoded protobuf message through grpc.
type frame struct {
	b []byte
}

// frameCodec hands frames to grpc as is. It registers under the proto name
// so the node sees the content type it expects.
type frameCodec struct{}

func (frameCodec) Marshal(v any) ([]byte, error) {
	f, ok := v.(*frame)
	if !ok {
		return nil, fmt.Errorf("unexpected message type %T", v)
	}
	return f.b, nil
}

func (frameCodec) Unmarshal(data []byte, v any) error {
	f, ok := v.(*frame)
	if !ok {
		return fmt.Errorf("unexpected message type %T", v)
	}
	f.b = append(f.b[:0], data...)
	return nil
}

func (frameCodec) Name() string {
	return "proto"
}

type field struct {
	num    protowire.Number
	bytes  []byte
	varint uint64
}

// message is a decoded protobuf message, fields in wire order.
type message []field

func parseMessage(b []byte) (message, error) {
	var m message
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		f := field{num: num}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		m = append(m, f)
	}
	return m, nil
}

// bytes returns the last occurrence of num, like a protobuf decoder would.
func (m message) bytes(num protowire.Number) []byte {
	var out []byte
	for _, f := range m {
		if f.num == num {
			out = f.bytes
		}
	}
	return out
}

func (m message) varint(num protowire.Number) uint64 {
	var out uint64
	for _, f := range m {
		if f.num == num {
			out = f.varint
		}
	}
	return out
}

func (m message) all(num protowire.Number) [][]byte {
	var out [][]byte
	for _, f := range m {
		if f.num == num {
			out = append(out, f.bytes)
		}
	}
	return out
}

func (m message) has(num protowire.Number) bool {
	for _, f := range m {
		if f.num == num {
			return true
		}
	}
	return false
}

// sub decodes the embedded message num. A missing field decodes as empty.
func (m message) sub(num protowire.Number) (message, error) {
	return parseMessage(m.bytes(num))
}

// wrappedBytes reads the single field of a wrapper message such as BlockHash or
// Amount.
func (m message) wrappedBytes(num protowire.Number) ([]byte, error) {
	inner, err := m.sub(num)
	if err != nil {
		return nil, err
	}
	return inner.bytes(1), nil
}

func (m message) wrappedVarint(num protowire.Number) (uint64, error) {
	inner, err := m.sub(num)
	if err != nil {
		return 0, err
	}
	return inner.varint(1), nil
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// givenBlock selects a block by hash.
func givenBlock(hash []byte) []byte {
	return appendMessage(nil, 3, appendMessage(nil, 1, hash))
}

// blockAtHeight selects a block by absolute height.
func blockAtHeight(height uint64) []byte {
	return appendMessage(nil, 4, appendVarint(nil, 1, height))
}

func accountInfoRequest(block, address []byte) []byte {
	b := appendMessage(nil, 1, block)
	return appendMessage(b, 2, appendMessage(nil, 1, appendMessage(nil, 1, address)))
}

func instanceInfoRequest(block []byte, index, subindex uint64) []byte {
	b := appendMessage(nil, 1, block)
	return appendMessage(b, 2, appendVarint(appendVarint(nil, 1, index), 2, subindex))
}

// encodeAddress renders a raw account address the way wallets show it.
func encodeAddress(raw []byte) string {
	payload := make([]byte, 0, len(raw)+5)
	payload = append(payload, accountAddressVersion)
	payload = append(payload, raw...)
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return base58.Encode(append(payload, second[:4]...))
}
