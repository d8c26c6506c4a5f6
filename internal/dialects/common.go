package dialects

import "example.com/mavgate/internal/dialect"

// Common assembles the shipped subset of the common dialect. The catalog is
// built fresh on every call; catalogs are immutable once constructed, so
// callers normally build one and share it.
func Common() *dialect.Dialect {
	d, err := dialect.New("common", []dialect.Message{
		MsgHeartbeat,
		MsgSysStatus,
		MsgSystemTime,
		MsgPing,
		MsgParamValue,
		MsgParamSet,
		MsgGPSRawInt,
		MsgAttitude,
		MsgGlobalPositionInt,
		MsgVFRHUD,
		MsgCommandLong,
		MsgCommandAck,
		MsgBatteryStatus,
		MsgStatustext,
		MsgProtocolVersion,
	}, map[uint32]uint8{
		MsgHeartbeat.ID:         CRCExtraHeartbeat,
		MsgSysStatus.ID:         CRCExtraSysStatus,
		MsgSystemTime.ID:        CRCExtraSystemTime,
		MsgPing.ID:              CRCExtraPing,
		MsgParamValue.ID:        CRCExtraParamValue,
		MsgParamSet.ID:          CRCExtraParamSet,
		MsgGPSRawInt.ID:         CRCExtraGPSRawInt,
		MsgAttitude.ID:          CRCExtraAttitude,
		MsgGlobalPositionInt.ID: CRCExtraGlobalPositionInt,
		MsgVFRHUD.ID:            CRCExtraVFRHUD,
		MsgCommandLong.ID:       CRCExtraCommandLong,
		MsgCommandAck.ID:        CRCExtraCommandAck,
		MsgBatteryStatus.ID:     CRCExtraBatteryStatus,
		MsgStatustext.ID:        CRCExtraStatustext,
		MsgProtocolVersion.ID:   CRCExtraProtocolVersion,
	})
	if err != nil {
		// The definitions above are compile-time constants; a failure here is
		// a programming error.
		panic(err)
	}
	return d
}
