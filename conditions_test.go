package clasp_test

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPrinting(t *testing.T) {
	Convey("an address prints as upper case hex", t, func() {
		addr := clasp.NewAddress([]byte("a payload worth hashing"))

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", []byte(addr)))
	})

	Convey("a nil address prints a placeholder", t, func() {
		So(clasp.Address(nil).String(), ShouldEqual, "(nil)")
	})

	Convey("a condition prints its sections, not raw hex", t, func() {
		cond := clasp.NewCondition("htlc", "swap", []byte("ABCD123456LHB"))

		So(cond.String(), ShouldNotEqual, fmt.Sprintf("%X", []byte(cond)))
		So(cond.String(), ShouldStartWith, "htlc/swap/")
	})
}

func TestAddressUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr clasp.Address
	}{
		"default decoding": {
			json:     `"7477656e74792d627974652d6164647265737321"`,
			wantAddr: clasp.Address("twenty-byte-address!"),
		},
		"hex decoding": {
			json:     `"hex:7477656e74792d627974652d6164647265737321"`,
			wantAddr: clasp.Address("twenty-byte-address!"),
		},
		"cond decoding": {
			json:     `"cond:htlc/swap/73776170646174613031"`,
			wantAddr: clasp.NewCondition("htlc", "swap", []byte("swapdata01")).Address(),
		},
		"wrong length": {
			json:    `"6162636421"`,
			wantErr: errors.ErrInput,
		},
		"condition with two sections only": {
			json:    `"cond:htlc/73776170646174613031"`,
			wantErr: errors.ErrInput,
		},
		"condition data is not hex": {
			json:    `"cond:htlc/swap/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrType,
		},
		"an empty string is the zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"an empty hex payload is the zero address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
		"an empty cond payload is the zero address": {
			json:     `"cond:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a clasp.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %+v", tc.wantErr, err)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(a, tc.wantAddr) {
				t.Fatalf("want %q address, got %q", tc.wantAddr, a)
			}
		})
	}
}

func TestAddressBech32(t *testing.T) {
	addr := clasp.NewAddress([]byte("a payload worth hashing"))

	enc := addr.Bech32String("clasp")
	got, err := clasp.ParseAddress("bech32:" + enc)
	if err != nil {
		t.Fatalf("cannot parse: %+v", err)
	}
	if !got.Equals(addr) {
		t.Fatalf("got address: %q", got)
	}
}

func TestAddressLengthIsAConstant(t *testing.T) {
	// Fixed-width key layouts size their buffers with AddressLength
	// in constant expressions, so it must stay a constant.
	var buf [clasp.AddressLength]byte

	addr := clasp.NewAddress([]byte("a payload worth hashing"))
	if copy(buf[:], addr) != clasp.AddressLength {
		t.Fatalf("derived address is not %d bytes: %q", clasp.AddressLength, addr)
	}
}

func TestConditionUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		json    string
		wantErr *errors.Error
		want    clasp.Condition
	}{
		"swap condition": {
			json: `"htlc/swap/73776170646174613031"`,
			want: clasp.NewCondition("htlc", "swap", []byte("swapdata01")),
		},
		"two sections only": {
			json:    `"htlc/73776170646174613031"`,
			wantErr: errors.ErrInput,
		},
		"data is not hex": {
			json:    `"htlc/swap/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"empty string resets to nil": {
			json: `""`,
			want: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got clasp.Condition
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
			if err == nil && !got.Equals(tc.want) {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestConditionMarshalJSON(t *testing.T) {
	cond := clasp.NewCondition("htlc", "swap", []byte("swapdata01"))
	got, err := json.Marshal(cond)
	require.NoError(t, err)
	assert.Equal(t, `"htlc/swap/73776170646174613031"`, string(got))

	got, err = json.Marshal(clasp.Condition(nil))
	require.NoError(t, err)
	assert.Equal(t, `""`, string(got))
}
