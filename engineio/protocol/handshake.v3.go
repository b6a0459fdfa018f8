package protocol

// HandshakeV3 is the data of the open packet: https://github.com/socketio/engine.io-protocol/tree/v3
type HandshakeV3 struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval Duration `json:"pingInterval"`
	PingTimeout  Duration `json:"pingTimeout"`
}
