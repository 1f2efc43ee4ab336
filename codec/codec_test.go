package codec

import (
	"bytes"
	"context"
	"testing"
)

func TestNativeRoundTrip(t *testing.T) {
	ctx := context.Background()

	inputs := map[string][]byte{
		"empty":   {},
		"hello":   []byte("Hello ZSTD!"),
		"unicode": []byte("压缩测试 compression test"),
		"large":   bytes.Repeat([]byte("the quick brown fox "), 5000),
	}

	tests := []struct {
		name   string
		levels []int
	}{
		{Zstd, []int{0, 1, 3, 10, 22}},
		{Snappy, []int{0, 5}},
		{LZ4, []int{0, 1, 9}},
		{Brotli, []int{0, 1, 11}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			open, ok := Builtin(tc.name)
			if !ok {
				t.Fatalf("Builtin(%q) not found", tc.name)
			}
			c, err := open(ctx)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer c.Close(ctx)

			for label, in := range inputs {
				for _, level := range tc.levels {
					packed, err := c.Compress(ctx, in, level)
					if err != nil {
						t.Fatalf("%s level %d: Compress: %v", label, level, err)
					}
					out, err := c.Decompress(ctx, packed)
					if err != nil {
						t.Fatalf("%s level %d: Decompress: %v", label, level, err)
					}
					if !bytes.Equal(out, in) {
						t.Errorf("%s level %d: round trip mismatch", label, level)
					}
				}
			}

			large := inputs["large"]
			packed, _ := c.Compress(ctx, large, 0)
			if len(packed) >= len(large) {
				t.Errorf("compressed %d bytes to %d", len(large), len(packed))
			}
		})
	}
}

func TestNativeLevelOutOfRange(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		level int
	}{
		{Zstd, 23},
		{Zstd, -1},
		{LZ4, 10},
		{LZ4, -1},
		{Brotli, 12},
	}

	for _, tc := range tests {
		open, _ := Builtin(tc.name)
		c, err := open(ctx)
		if err != nil {
			t.Fatalf("%s: open: %v", tc.name, err)
		}
		if _, err := c.Compress(ctx, []byte("x"), tc.level); err == nil {
			t.Errorf("%s level %d: expected error", tc.name, tc.level)
		}
		c.Close(ctx)
	}
}

func TestNativeCorruptInput(t *testing.T) {
	ctx := context.Background()
	garbage := []byte("definitely not compressed data")

	// brotli has no frame magic, so arbitrary bytes are not reliably rejected.
	for _, name := range []string{Zstd, Snappy, LZ4} {
		open, _ := Builtin(name)
		c, err := open(ctx)
		if err != nil {
			t.Fatalf("%s: open: %v", name, err)
		}
		if _, err := c.Decompress(ctx, garbage); err == nil {
			t.Errorf("%s: expected error decompressing garbage", name)
		}
		c.Close(ctx)
	}
}

func TestZstdClose(t *testing.T) {
	ctx := context.Background()
	c, err := NewZstd(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Compress(ctx, []byte("x"), 5); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(ctx); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := c.Compress(ctx, []byte("x"), 5); err == nil {
		t.Error("Compress after Close should fail")
	}
}

func TestBuiltinNames(t *testing.T) {
	got := BuiltinNames()
	want := []string{Brotli, LZ4, Snappy, Zstd}
	if len(got) != len(want) {
		t.Fatalf("BuiltinNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("BuiltinNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if _, ok := Builtin("gzip"); ok {
		t.Error("gzip should not be a builtin")
	}
}
