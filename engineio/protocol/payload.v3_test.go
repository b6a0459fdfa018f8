package protocol

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadV3(t *testing.T) {
	var opts = []func(*testing.T){}

	type (
		testFn          func(*testing.T)
		testParamsInFn  func(PayloadV3, string, bool, error) testFn
		testParamsOutFn func(*testing.T) (PayloadV3, string, bool, error)
	)

	asPayload := func(pay3 PayloadV3) Payload {
		out := make(Payload, len(pay3))
		for i, v := range pay3 {
			out[i] = v.Packet
		}
		return out
	}

	runWithOptions := map[string]testParamsInFn{
		"Decode": func(output PayloadV3, input string, isBinary bool, xErr error) testFn {
			return func(t *testing.T) {
				for _, opt := range opts {
					opt(t)
				}

				t.Parallel()

				var have PayloadV3
				var dec = NewPayloadDecoderV3(strings.NewReader(input))
				dec.isBinary = isBinary
				var err = dec.Decode(&have)

				assert.ErrorIs(t, err, xErr)
				assert.Equal(t, output, have)
			}
		},
		"Encode": func(input PayloadV3, output string, isBinary bool, xErr error) testFn {
			return func(t *testing.T) {
				for _, opt := range opts {
					opt(t)
				}

				t.Parallel()

				var have = new(bytes.Buffer)
				var enc = NewPayloadEncoderV3(have)
				enc.hasBinarySupport = isBinary
				var err = enc.Encode(input)

				assert.ErrorIs(t, err, xErr)
				assert.Equal(t, output, have.String())
			}
		},
		"ReadPayload": func(output PayloadV3, input string, isBinary bool, xErr error) testFn {
			return func(t *testing.T) {
				for _, opt := range opts {
					opt(t)
				}

				t.Parallel()

				var have Payload
				var err = NewPayloadDecoderV3.SetBinary(isBinary).From(strings.NewReader(input)).ReadPayload(&have)

				assert.ErrorIs(t, err, xErr)
				assert.Equal(t, asPayload(output), have)
			}
		},
		"WritePayload": func(input PayloadV3, output string, isBinary bool, xErr error) testFn {
			return func(t *testing.T) {
				for _, opt := range opts {
					opt(t)
				}

				t.Parallel()

				var have = new(bytes.Buffer)
				var err = NewPayloadEncoderV3.SetBinary(isBinary).To(have).WritePayload(asPayload(input))

				assert.ErrorIs(t, err, xErr)
				assert.Equal(t, output, have.String())
			}
		},
	}

	spec := map[string]testParamsOutFn{
		"Without Binary": func(*testing.T) (PayloadV3, string, bool, error) {
			asString := `6:4hello2:4€`
			asPayload := PayloadV3{
				{Packet{T: MessagePacket, D: "hello"}, false},
				{Packet{T: MessagePacket, D: "€"}, false},
			}
			return asPayload, asString, false, nil
		},
		"Surrogate Pair Length": func(*testing.T) (PayloadV3, string, bool, error) {
			asString := `3:4😀1:2`
			asPayload := PayloadV3{
				{Packet{T: MessagePacket, D: "😀"}, false},
				{Packet{T: PingPacket, D: nil}, false},
			}
			return asPayload, asString, false, nil
		},
		"With Binary and Supported": func(*testing.T) (PayloadV3, string, bool, error) {
			asString := string([]byte{
				0x00, 0x04, 0xff, 0x34, 0xe2, 0x82, 0xac,
				0x01, 0x05, 0xff, 0x04, 0x01, 0x02, 0x03, 0x04,
			})
			asPayload := PayloadV3{
				{Packet{T: MessagePacket, D: "€"}, false},
				{Packet{T: MessagePacket, D: []byte{0x01, 0x02, 0x03, 0x04}}, true},
			}
			return asPayload, asString, true, nil
		},
		"With Binary and Not Supported": func(*testing.T) (PayloadV3, string, bool, error) {
			asString := `2:4€10:b4AQIDBA==`
			asPayload := PayloadV3{
				{Packet{T: MessagePacket, D: "€"}, false},
				{Packet{T: MessagePacket, D: []byte{0x01, 0x02, 0x03, 0x04}}, false},
			}
			return asPayload, asString, false, nil
		},
		"Long Binary Length": func(*testing.T) (PayloadV3, string, bool, error) {
			data := bytes.Repeat([]byte{0x07}, 11)
			asString := string(append([]byte{0x01, 0x01, 0x02, 0xff, 0x04}, data...))
			asPayload := PayloadV3{
				{Packet{T: MessagePacket, D: data}, true},
			}
			return asPayload, asString, true, nil
		},
	}

	for name, testParams := range spec {
		for suffix, run := range runWithOptions {
			t.Run(fmt.Sprintf("%s.%s", name, suffix), run(testParams(t)))
		}
	}
}

func TestPayloadV3Errors(t *testing.T) {
	var tests = map[string]struct {
		input    string
		isBinary bool
		xErr     error
	}{
		"bad length":       {input: "x:4hello", xErr: ErrInvalidPayloadLen},
		"zero length":      {input: "0:", xErr: ErrInvalidPayloadLen},
		"short packet":     {input: "9:4hi", xErr: ErrPayloadDecode},
		"missing colon":    {input: "12", xErr: ErrPayloadDecode},
		"bad packet":       {input: "2:9x", xErr: ErrInvalidPacketType},
		"bad marker":       {input: "\x07\x01\xff4", isBinary: true, xErr: ErrInvalidBinaryMarker},
		"bad binary len":   {input: "\x00\x0a\xff4", isBinary: true, xErr: ErrInvalidPayloadLen},
		"short binary":     {input: "\x01\x05\xff\x04\x01", isBinary: true, xErr: ErrPayloadDecode},
		"no binary length": {input: "\x00\xff", isBinary: true, xErr: ErrInvalidPayloadLen},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			var have PayloadV3
			var dec = NewPayloadDecoderV3(strings.NewReader(test.input))
			dec.isBinary = test.isBinary
			assert.ErrorIs(t, dec.Decode(&have), test.xErr)
		})
	}
}
