package engine

import (
	"strings"
	"testing"

	"github.com/tetratelabs/wazero/api"
)

func TestFormatSignature(t *testing.T) {
	for _, abi := range codecABI {
		s := abi.sig.String()
		if !strings.HasPrefix(s, "func(") {
			t.Errorf("%s: unexpected signature %q", abi.name, s)
		}
	}
	if got := codecABI[1].sig.String(); got != "func(i32, i32, i32) -> i64" {
		t.Errorf("compress signature = %q", got)
	}
}

func TestSameTypes(t *testing.T) {
	tests := []struct {
		a, b []api.ValueType
		want bool
	}{
		{nil, nil, true},
		{[]api.ValueType{i32}, []api.ValueType{i32}, true},
		{[]api.ValueType{i32}, []api.ValueType{i64}, false},
		{[]api.ValueType{i32, i32}, []api.ValueType{i32}, false},
	}
	for _, tc := range tests {
		if got := sameTypes(tc.a, tc.b); got != tc.want {
			t.Errorf("sameTypes(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestUnpackResult(t *testing.T) {
	ptr, n := unpackResult(uint64(1024)<<32 | 77)
	if ptr != 1024 || n != 77 {
		t.Errorf("unpackResult = %d, %d", ptr, n)
	}
}
