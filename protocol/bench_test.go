package protocol

import (
	"fmt"
	"testing"
	"time"
)

func benchPayload(size int) []byte {
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	return payload
}

func benchProperties() *Properties {
	return NewBasicProperties(
		WithContentType("application/octet-stream"),
		WithDeliveryMode(2),
		WithMessageID("bench-1"),
		WithTimestamp(time.Unix(1700000000, 0)),
		WithHeaders(Table{"tenant": "acme", "attempt": int32(1), "trace": Table{"span": int64(42)}}),
	)
}

// BenchmarkMessageSizes encodes a publish with its header and body frames.
func BenchmarkMessageSizes(b *testing.B) {
	codec := NewCodec()
	props := benchProperties()
	method := &BasicPublishMethod{Exchange: "size.exchange", RoutingKey: "size.key"}

	sizes := []int{100, 1024, 10 * 1024, 100 * 1024, 1024 * 1024} // 100B, 1KB, 10KB, 100KB, 1MB
	for _, size := range sizes {
		b.Run(fmt.Sprintf("MessageSize%dB", size), func(b *testing.B) {
			payload := benchPayload(size)
			buf := make([]byte, 0, size+4096)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				buf = buf[:0]
				for _, f := range ContentFrames(1, method, props, payload, 131072) {
					var err error
					if buf, err = codec.AppendFrame(buf, f); err != nil {
						b.Fatalf("Failed to encode frame: %v", err)
					}
				}
			}

			// Report throughput
			mbps := float64(size*b.N) / float64(1024*1024) / b.Elapsed().Seconds()
			b.ReportMetric(mbps, "MB/s")
		})
	}
}

// BenchmarkAssembler feeds an encoded delivery to the assembler in chunks of
// varying size.
func BenchmarkAssembler(b *testing.B) {
	codec := NewCodec()
	deliver := &BasicDeliverMethod{ConsumerTag: "ctag", DeliveryTag: 1, Exchange: "ex", RoutingKey: "rk"}

	var stream []byte
	for _, f := range ContentFrames(1, deliver, benchProperties(), benchPayload(64*1024), 131072) {
		var err error
		if stream, err = codec.AppendFrame(stream, f); err != nil {
			b.Fatalf("Failed to encode frame: %v", err)
		}
	}

	for _, chunk := range []int{512, 4096, 65536} {
		b.Run(fmt.Sprintf("Chunk%dB", chunk), func(b *testing.B) {
			frames := 0
			a := codec.NewAssembler(func(Frame) error {
				frames++
				return nil
			})
			b.SetBytes(int64(len(stream)))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for off := 0; off < len(stream); off += chunk {
					if _, err := a.Write(stream[off:min(off+chunk, len(stream))]); err != nil {
						b.Fatalf("Assembler failed: %v", err)
					}
				}
			}
			if frames == 0 {
				b.Fatal("no frames assembled")
			}
		})
	}
}

// BenchmarkFieldTable measures a typical headers table.
func BenchmarkFieldTable(b *testing.B) {
	table := Table{
		"x-match":    "all",
		"x-priority": int32(5),
		"retries":    int64(3),
		"ratio":      1.5,
		"sent":       time.Unix(1700000000, 0),
		"nested":     Table{"a": true, "b": []interface{}{int32(1), "two"}},
	}

	b.Run("Encode", func(b *testing.B) {
		buf := make([]byte, 0, 512)
		for i := 0; i < b.N; i++ {
			var err error
			if buf, err = EncodeTable(buf[:0], table); err != nil {
				b.Fatalf("Failed to encode table: %v", err)
			}
		}
	})

	encoded, err := EncodeTable(nil, table)
	if err != nil {
		b.Fatalf("Failed to encode table: %v", err)
	}
	b.Run("Decode", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, _, err := DecodeTable(encoded, 0); err != nil {
				b.Fatalf("Failed to decode table: %v", err)
			}
		}
	})
}
