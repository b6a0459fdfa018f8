package protocol

import "io"

type Payload []Packet

func (pay Payload) PayloadVal() Payload   { return pay }
func (pay *Payload) PayloadRef() *Payload { return pay }

// HasBinary reports if any packet of the payload carries binary data.
func (pay Payload) HasBinary() bool {
	for _, packet := range pay {
		if packet.IsBinary() {
			return true
		}
	}
	return false
}

type (
	PayloadEncoder interface{ To(io.Writer) PayloadWriter }
	PayloadDecoder interface{ From(io.Reader) PayloadReader }

	PayloadVal interface{ PayloadVal() Payload }
	PayloadRef interface{ PayloadRef() *Payload }

	PayloadWriter interface{ WritePayload(PayloadVal) error }
	PayloadReader interface{ ReadPayload(PayloadRef) error }
)

// okResponse is the body a server answers a polling POST with.
const okResponse = "ok"
