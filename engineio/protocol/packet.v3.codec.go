package protocol

import "io"

type _packetDecoderV3 func(r io.Reader) *PacketDecoderV3
type _packetEncoderV3 func(w io.Writer) *PacketEncoderV3
type _packetReaderV3 func(packet *PacketV3) (err error)
type _packetWriterV3 func(packet PacketV3) (err error)

// SetBinary allows the encoder to write raw binary frames.
func (pac _packetEncoderV3) SetBinary(isBinary bool) _packetEncoderV3 {
	return func(w io.Writer) *PacketEncoderV3 {
		enc := pac(w)
		enc.hasBinarySupport = isBinary
		return enc
	}
}

func (pac _packetDecoderV3) From(r io.Reader) PacketReader { return _packetReaderV3(pac(r).Decode) }
func (pac _packetEncoderV3) To(w io.Writer) PacketWriter   { return _packetWriterV3(pac(w).Encode) }
func (pac _packetReaderV3) ReadPacket(packet PacketRef) (err error) {
	var v = PacketV3{Packet: *packet.PacketRef()}
	if pv3, ok := packet.(*PacketV3); ok {
		v.IsBinary = pv3.IsBinary
	}
	err = pac(&v)
	*packet.PacketRef() = v.Packet
	return err
}
func (pac _packetWriterV3) WritePacket(packet PacketVal) error {
	return pac(PacketV3{Packet: packet.PacketVal()})
}
