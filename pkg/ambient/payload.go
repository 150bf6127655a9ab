/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package ambient

import (
	"bytes"
	"fmt"
)

// builder assembles the small, fixed-shape onChange payloads (spec
// §4.6: "{"timestamp_s_local":<unix_s>,"value_num":<value>}"). These
// never approach UPDATE_MAX_PAYLOAD_BYTES, so unlike pkg/reporter's
// payloadBuilder this one does not need an overflow guard.
type builder struct {
	buf   bytes.Buffer
	first bool
}

func newBuilder() *builder {
	b := &builder{first: true}
	b.buf.WriteByte('{')
	return b
}

func (b *builder) field(name, rawValue string) {
	if !b.first {
		b.buf.WriteByte(',')
	}
	fmt.Fprintf(&b.buf, "%q:%s", name, rawValue)
	b.first = false
}

func (b *builder) intField(name string, value int64) {
	b.field(name, fmt.Sprintf("%d", value))
}

func (b *builder) floatField(name string, value float64, decimals int) {
	b.field(name, fmt.Sprintf("%.*f", decimals, value))
}

func (b *builder) bytes() []byte {
	b.buf.WriteByte('}')
	return b.buf.Bytes()
}
