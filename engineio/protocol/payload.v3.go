package protocol

import (
	"bytes"
	"io"
	"strconv"

	rw "github.com/njones/eioclient/internal/readwriter"
)

const (
	binaryMarkerString byte = 0x00
	binaryMarkerBinary byte = 0x01
	binaryLenEnd       byte = 0xFF
)

// PayloadV3 is defined: https://github.com/socketio/engine.io-protocol/tree/v3
type PayloadV3 []PacketV3

type PayloadDecoderV3 struct {
	read *rw.Reader

	// isBinary is set when the payload arrived as application/octet-stream
	isBinary bool
}

var NewPayloadDecoderV3 _payloadDecoderV3 = func(r io.Reader) *PayloadDecoderV3 {
	return &PayloadDecoderV3{read: rw.NewReader(r)}
}

func (dec *PayloadDecoderV3) Decode(payload *PayloadV3) error {
	if payload == nil {
		payload = &PayloadV3{}
	}

	if dec.isBinary {
		return dec.decodeBinary(payload)
	}

	if peek := dec.read.Peek(len(okResponse) + 1); string(peek) == okResponse {
		return nil
	}
	dec.read.ConvertErr(io.EOF, nil)

	for {
		if dec.read.Peek(1); dec.read.IsErr() {
			break
		}

		str := dec.read.ReadString(':')
		if dec.read.IsErr() {
			return ErrPayloadDecode.F(ver, dec.read.Err())
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err == nil && n < 1 {
			err = strconv.ErrRange
		}
		if err != nil {
			return ErrPayloadDecode.F(ver, ErrInvalidPayloadLen.F(str, err))
		}

		data := dec.read.ReadUTF16N(n)
		if dec.read.IsErr() {
			return ErrPayloadDecode.F(ver, dec.read.Err())
		}

		var packet PacketV3
		if err := NewPacketDecoderV3(bytes.NewReader([]byte(data))).Decode(&packet); err != nil {
			return ErrPayloadDecode.F(ver, err)
		}
		*payload = append(*payload, packet)
	}

	return dec.read.ConvertErr(io.EOF, nil).Err()
}

func (dec *PayloadDecoderV3) decodeBinary(payload *PayloadV3) error {
	for {
		if dec.read.Peek(1); dec.read.IsErr() {
			break
		}

		marker := dec.read.ReadByte()
		if marker != binaryMarkerString && marker != binaryMarkerBinary {
			return ErrPayloadDecode.F(ver, ErrInvalidBinaryMarker)
		}

		n := dec.readBinaryLen()
		data := dec.read.ReadN(n)
		if dec.read.IsErr() {
			return ErrPayloadDecode.F(ver, dec.read.Err())
		}

		var packet = PacketV3{IsBinary: marker == binaryMarkerBinary}
		if err := NewPacketDecoderV3(bytes.NewReader(data)).Decode(&packet); err != nil {
			return ErrPayloadDecode.F(ver, err)
		}
		*payload = append(*payload, packet)
	}

	return dec.read.ConvertErr(io.EOF, nil).Err()
}

// readBinaryLen reads the length digits, one digit per byte, up to the 0xFF marker.
func (dec *PayloadDecoderV3) readBinaryLen() (n int64) {
	var digits int
	for dec.read.IsNotErr() {
		b := dec.read.ReadByte()
		if dec.read.IsErr() {
			dec.read.ConvertErr(io.EOF, io.ErrUnexpectedEOF)
			return 0
		}
		if b == binaryLenEnd {
			break
		}
		if b > 9 || digits > 310 {
			dec.read.SetErr(ErrInvalidPayloadLen.F(strconv.Itoa(int(b)), strconv.ErrSyntax))
			return 0
		}
		n = n*10 + int64(b)
		digits++
	}
	if digits == 0 && dec.read.IsNotErr() {
		dec.read.SetErr(ErrInvalidPayloadLen.F("", strconv.ErrSyntax))
	}
	return n
}

type PayloadEncoderV3 struct {
	write *rw.Writer

	hasBinarySupport bool
}

var NewPayloadEncoderV3 _payloadEncoderV3 = func(w io.Writer) *PayloadEncoderV3 {
	return &PayloadEncoderV3{write: rw.NewWriter(w)}
}

// Encode writes the payload as XHR2 binary framing when binary is supported
// and a packet needs it, otherwise as length prefixed text.
func (enc *PayloadEncoderV3) Encode(payload PayloadV3) error {
	var asBinary bool
	if enc.hasBinarySupport {
		for _, packet := range payload {
			asBinary = asBinary || packet.Packet.IsBinary()
		}
	}

	for _, packet := range payload {
		var err error
		if asBinary {
			err = enc.encodeBinary(packet.Packet)
		} else {
			err = enc.encodeText(packet.Packet)
		}
		if err != nil {
			return ErrPayloadEncode.F(ver, err)
		}
	}
	if err := enc.write.Err(); err != nil {
		return ErrPayloadEncode.F(ver, err)
	}
	return nil
}

func (enc *PayloadEncoderV3) encodeText(packet Packet) error {
	data, _, err := encodeV3(packet, false)
	if err != nil {
		return err
	}
	enc.write.String(strconv.Itoa(rw.UTF16Len(string(data)))).Byte(':').Bytes(data)
	return nil
}

func (enc *PayloadEncoderV3) encodeBinary(packet Packet) error {
	data, isBinary, err := encodeV3(packet, true)
	if err != nil {
		return err
	}

	marker := binaryMarkerString
	if isBinary {
		marker = binaryMarkerBinary
	}
	enc.write.Byte(marker)
	for _, r := range strconv.Itoa(len(data)) {
		enc.write.Byte(byte(r - '0'))
	}
	enc.write.Byte(binaryLenEnd).Bytes(data)
	return nil
}
