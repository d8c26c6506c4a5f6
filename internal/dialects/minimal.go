package dialects

import "example.com/mavgate/internal/dialect"

// Minimal assembles the smallest useful catalog: enough to join a MAVLink
// network and negotiate the protocol version. It demonstrates subset
// composition for callers that want a trimmed binary.
func Minimal() *dialect.Dialect {
	d, err := dialect.New("minimal", []dialect.Message{
		MsgHeartbeat,
		MsgProtocolVersion,
	}, map[uint32]uint8{
		MsgHeartbeat.ID:       CRCExtraHeartbeat,
		MsgProtocolVersion.ID: CRCExtraProtocolVersion,
	})
	if err != nil {
		panic(err)
	}
	return d
}
