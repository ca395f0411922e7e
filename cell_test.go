package sheetview_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ideamans/go-sheetview"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		want       string
		wantPrefix string
		wantErr    error
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string", value: "hello", want: "hello"},
		{name: "int", value: 28, want: "28"},
		{name: "negative int64", value: int64(-7), want: "-7"},
		{name: "uint8", value: uint8(255), want: "255"},
		{name: "float", value: 28.3, wantPrefix: "2.83"},
		{name: "ascii bytes", value: []byte("abc"), want: "abc"},
		{name: "non-ascii bytes", value: []byte{0x61, 0xff}, wantErr: sheetview.ErrEncoding},
		{name: "stringer", value: time.Duration(90) * time.Second, want: "1m30s"},
		{name: "bool", value: true, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sheetview.CellString(tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CellString() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CellString() error = %v", err)
			}
			if tt.wantPrefix != "" {
				if !strings.HasPrefix(got, tt.wantPrefix) || !strings.HasSuffix(got, "e+01") {
					t.Errorf("CellString() = %q, want %s...e+01", got, tt.wantPrefix)
				}
				return
			}
			if got != tt.want {
				t.Errorf("CellString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCellString_FloatPrecision(t *testing.T) {
	got, err := sheetview.CellString(28.3)
	if err != nil {
		t.Fatalf("CellString() error = %v", err)
	}
	mantissa, _, _ := strings.Cut(got, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	if len(digits) != 21 {
		t.Errorf("CellString(28.3) = %q has %d significant digits, want 21", got, len(digits))
	}
}
