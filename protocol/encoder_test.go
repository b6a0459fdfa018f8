package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noAuth = "Not authorized"

func TestEncoder(t *testing.T) {
	type want struct {
		data []interface{}
		err  error
	}

	var tests = []struct {
		name string
		pac  Packet
		want want
	}{
		{
			name: "CONNECT",
			pac:  Packet{Type: ConnectPacket, Namespace: "/"},
			want: want{data: []interface{}{`0`}},
		},
		{
			name: "CONNECT /admin ns",
			pac:  Packet{Type: ConnectPacket, Namespace: "/admin"},
			want: want{data: []interface{}{`0/admin,`}},
		},
		{
			name: "DISCONNECT /admin ns",
			pac:  Packet{Type: DisconnectPacket, Namespace: "/admin"},
			want: want{data: []interface{}{`1/admin,`}},
		},
		{
			name: "EVENT",
			pac:  Packet{Type: EventPacket, Namespace: "/", Data: []interface{}{"hello", 1.0}},
			want: want{data: []interface{}{`2["hello",1]`}},
		},
		{
			name: "EVENT with AckID",
			pac:  Packet{Type: EventPacket, Namespace: "/admin", Data: []interface{}{"project:delete", 123.0}}.WithAckID(456),
			want: want{data: []interface{}{`2/admin,456["project:delete",123]`}},
		},
		{
			name: "EVENT with AckID zero",
			pac:  Packet{Type: EventPacket, Data: []interface{}{"a<b"}}.WithAckID(0),
			want: want{data: []interface{}{`20["a<b"]`}},
		},
		{
			name: "ACK",
			pac:  Packet{Type: AckPacket, Namespace: "/admin", Data: []interface{}{}}.WithAckID(456),
			want: want{data: []interface{}{`3/admin,456[]`}},
		},
		{
			name: "ERROR",
			pac:  Packet{Type: ErrorPacket, Namespace: "/admin", Data: noAuth},
			want: want{data: []interface{}{`4/admin,"Not authorized"`}},
		},
		{
			name: "BINARY EVENT",
			pac:  Packet{Type: EventPacket, Data: []interface{}{"hello", Blob{1, 2, 3}}},
			want: want{data: []interface{}{`51-["hello",{"_placeholder":true,"num":0}]`, []byte{1, 2, 3}}},
		},
		{
			name: "BINARY ACK",
			pac:  Packet{Type: AckPacket, Namespace: "/admin", Data: []interface{}{map[string]interface{}{"b": []byte{2}, "a": Blob{1}}}}.WithAckID(456),
			want: want{data: []interface{}{
				`62-/admin,456[{"a":{"_placeholder":true,"num":0},"b":{"_placeholder":true,"num":1}}]`,
				[]byte{1},
				[]byte{2},
			}},
		},
		{
			name: "INVALID",
			pac:  Packet{Type: PacketType(9)},
			want: want{err: ErrInvalidPacketType},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			have, err := Encoder{}.Encode(test.pac)
			if test.want.err != nil {
				assert.ErrorIs(t, err, test.want.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.want.data, have)
		})
	}
}
