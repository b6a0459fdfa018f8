package protocol

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"

	rw "github.com/njones/eioclient/internal/readwriter"
)

const ver = "v3"

const binaryPrefix = 'b'

// PacketV3 is defined: https://github.com/socketio/engine.io-protocol/tree/v3
//
// IsBinary marks a packet that travels as a raw binary frame rather than text.
type PacketV3 struct {
	Packet

	IsBinary bool
}

type PacketDecoderV3 struct {
	read *rw.Reader
}

var NewPacketDecoderV3 _packetDecoderV3 = func(r io.Reader) *PacketDecoderV3 {
	return &PacketDecoderV3{read: rw.NewReader(r)}
}

func (dec *PacketDecoderV3) Decode(packet *PacketV3) error {
	if packet == nil {
		packet = &PacketV3{}
	}

	if packet.IsBinary {
		data := dec.read.ReadAll()
		if dec.read.IsErr() {
			return ErrPacketDecode.F(ver, dec.read.Err())
		}
		if len(data) == 0 {
			return ErrPacketDecode.F(ver, ErrEmptyPacket)
		}
		packet.T, packet.D = PacketType(data[0]), data[1:]
		if !packet.T.Valid() {
			return ErrInvalidPacketType.F(data[0])
		}
		return nil
	}

	first := dec.read.ReadByte()
	if dec.read.IsErr() {
		return ErrPacketDecode.F(ver, dec.read.ConvertErr(io.EOF, ErrEmptyPacket).Err())
	}

	if first == binaryPrefix {
		t := dec.read.ReadByte()
		data := dec.read.ReadAll()
		if dec.read.IsErr() {
			return ErrPacketDecode.F(ver, dec.read.Err())
		}
		packet.T = PacketType(t - '0')
		if !packet.T.Valid() {
			return ErrInvalidPacketType.F(string(t))
		}
		raw, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return ErrPacketDecode.F(ver, err)
		}
		packet.D = raw
		return nil
	}

	packet.T = PacketType(first - '0')
	if !packet.T.Valid() {
		return ErrInvalidPacketType.F(string(first))
	}

	data := dec.read.ReadAll()
	if dec.read.IsErr() {
		return ErrPacketDecode.F(ver, dec.read.Err())
	}

	switch packet.T {
	case OpenPacket:
		var hs HandshakeV3
		if err := json.Unmarshal(data, &hs); err != nil {
			return ErrHandshakeDecode.F(ver, err)
		}
		packet.D = &hs
	case MessagePacket:
		packet.D = string(data)
	default:
		packet.D = nil
		if len(data) > 0 {
			packet.D = string(data)
		}
	}

	return nil
}

type PacketEncoderV3 struct {
	write *rw.Writer

	hasBinarySupport bool
}

var NewPacketEncoderV3 _packetEncoderV3 = func(w io.Writer) *PacketEncoderV3 {
	return &PacketEncoderV3{write: rw.NewWriter(w)}
}

func (enc *PacketEncoderV3) Encode(packet PacketV3) error {
	if !packet.T.Valid() {
		return ErrInvalidPacketType.F(byte(packet.T))
	}

	switch data := packet.D.(type) {
	case nil:
		enc.write.Bytes(packet.T.Bytes())
	case string:
		enc.write.Bytes(packet.T.Bytes()).String(data)
	case []byte:
		if enc.hasBinarySupport {
			enc.write.Byte(byte(packet.T)).Bytes(data)
			break
		}
		enc.write.Byte(binaryPrefix).Bytes(packet.T.Bytes()).String(base64.StdEncoding.EncodeToString(data))
	case *HandshakeV3, HandshakeV3:
		if packet.T != OpenPacket {
			return ErrInvalidPacketData.F(data)
		}
		var hs HandshakeV3
		switch val := data.(type) {
		case *HandshakeV3:
			if val != nil {
				hs = *val
			}
		case HandshakeV3:
			hs = val
		}
		if hs.Upgrades == nil {
			hs.Upgrades = []string{}
		}
		b, err := json.Marshal(hs)
		if err != nil {
			return ErrHandshakeEncode.F(ver, err)
		}
		enc.write.Bytes(packet.T.Bytes()).Bytes(b)
	default:
		return ErrInvalidPacketData.F(data)
	}

	if err := enc.write.Err(); err != nil {
		return ErrPacketEncode.F(ver, err)
	}
	return nil
}

// encodeV3 is a helper for the payload encoders, it returns the encoded
// packet and if it is a binary frame.
func encodeV3(packet Packet, hasBinarySupport bool) ([]byte, bool, error) {
	var buf = new(bytes.Buffer)
	enc := NewPacketEncoderV3(buf)
	enc.hasBinarySupport = hasBinarySupport
	if err := enc.Encode(PacketV3{Packet: packet}); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), hasBinarySupport && packet.IsBinary(), nil
}
