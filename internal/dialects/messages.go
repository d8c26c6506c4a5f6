// Package dialects carries compiled-in message catalogs for the common
// MAVLink dialect subset this project ships with. Each definition is an
// exported value so callers can compose reduced catalogs holding only the
// messages they use.
package dialects

import (
	"example.com/mavgate/internal/dialect"
	"example.com/mavgate/internal/mav"
)

// CRC_EXTRA seeds, computed from the dialect XML by the standard MAVLink
// algorithm. The engine treats them as opaque bytes.
const (
	CRCExtraHeartbeat         = 50
	CRCExtraSysStatus         = 124
	CRCExtraSystemTime        = 137
	CRCExtraPing              = 237
	CRCExtraParamValue        = 220
	CRCExtraParamSet          = 168
	CRCExtraGPSRawInt         = 24
	CRCExtraAttitude          = 39
	CRCExtraGlobalPositionInt = 104
	CRCExtraVFRHUD            = 20
	CRCExtraCommandLong       = 152
	CRCExtraCommandAck        = 143
	CRCExtraBatteryStatus     = 154
	CRCExtraStatustext        = 83
	CRCExtraProtocolVersion   = 217
)

var MsgHeartbeat = dialect.Message{
	ID:   0,
	Name: "HEARTBEAT",
	Fields: []mav.FieldDef{
		{Name: "type", Type: "uint8_t"},
		{Name: "autopilot", Type: "uint8_t"},
		{Name: "base_mode", Type: "uint8_t"},
		{Name: "custom_mode", Type: "uint32_t"},
		{Name: "system_status", Type: "uint8_t"},
		{Name: "mavlink_version", Type: "uint8_t"},
	},
}

var MsgSysStatus = dialect.Message{
	ID:   1,
	Name: "SYS_STATUS",
	Fields: []mav.FieldDef{
		{Name: "onboard_control_sensors_present", Type: "uint32_t"},
		{Name: "onboard_control_sensors_enabled", Type: "uint32_t"},
		{Name: "onboard_control_sensors_health", Type: "uint32_t"},
		{Name: "load", Type: "uint16_t"},
		{Name: "voltage_battery", Type: "uint16_t"},
		{Name: "current_battery", Type: "int16_t"},
		{Name: "battery_remaining", Type: "int8_t"},
		{Name: "drop_rate_comm", Type: "uint16_t"},
		{Name: "errors_comm", Type: "uint16_t"},
		{Name: "errors_count1", Type: "uint16_t"},
		{Name: "errors_count2", Type: "uint16_t"},
		{Name: "errors_count3", Type: "uint16_t"},
		{Name: "errors_count4", Type: "uint16_t"},
		{Name: "onboard_control_sensors_present_extended", Type: "uint32_t", Extension: true},
		{Name: "onboard_control_sensors_enabled_extended", Type: "uint32_t", Extension: true},
		{Name: "onboard_control_sensors_health_extended", Type: "uint32_t", Extension: true},
	},
}

var MsgSystemTime = dialect.Message{
	ID:   2,
	Name: "SYSTEM_TIME",
	Fields: []mav.FieldDef{
		{Name: "time_unix_usec", Type: "uint64_t"},
		{Name: "time_boot_ms", Type: "uint32_t"},
	},
}

var MsgPing = dialect.Message{
	ID:   4,
	Name: "PING",
	Fields: []mav.FieldDef{
		{Name: "time_usec", Type: "uint64_t"},
		{Name: "seq", Type: "uint32_t"},
		{Name: "target_system", Type: "uint8_t"},
		{Name: "target_component", Type: "uint8_t"},
	},
}

var MsgParamValue = dialect.Message{
	ID:   22,
	Name: "PARAM_VALUE",
	Fields: []mav.FieldDef{
		{Name: "param_id", Type: "char[16]"},
		{Name: "param_value", Type: "float"},
		{Name: "param_type", Type: "uint8_t"},
		{Name: "param_count", Type: "uint16_t"},
		{Name: "param_index", Type: "uint16_t"},
	},
}

var MsgParamSet = dialect.Message{
	ID:   23,
	Name: "PARAM_SET",
	Fields: []mav.FieldDef{
		{Name: "target_system", Type: "uint8_t"},
		{Name: "target_component", Type: "uint8_t"},
		{Name: "param_id", Type: "char[16]"},
		{Name: "param_value", Type: "float"},
		{Name: "param_type", Type: "uint8_t"},
	},
}

var MsgGPSRawInt = dialect.Message{
	ID:   24,
	Name: "GPS_RAW_INT",
	Fields: []mav.FieldDef{
		{Name: "time_usec", Type: "uint64_t"},
		{Name: "fix_type", Type: "uint8_t"},
		{Name: "lat", Type: "int32_t"},
		{Name: "lon", Type: "int32_t"},
		{Name: "alt", Type: "int32_t"},
		{Name: "eph", Type: "uint16_t"},
		{Name: "epv", Type: "uint16_t"},
		{Name: "vel", Type: "uint16_t"},
		{Name: "cog", Type: "uint16_t"},
		{Name: "satellites_visible", Type: "uint8_t"},
		{Name: "alt_ellipsoid", Type: "int32_t", Extension: true},
		{Name: "h_acc", Type: "uint32_t", Extension: true},
		{Name: "v_acc", Type: "uint32_t", Extension: true},
		{Name: "vel_acc", Type: "uint32_t", Extension: true},
		{Name: "hdg_acc", Type: "uint32_t", Extension: true},
		{Name: "yaw", Type: "uint16_t", Extension: true},
	},
}

var MsgAttitude = dialect.Message{
	ID:   30,
	Name: "ATTITUDE",
	Fields: []mav.FieldDef{
		{Name: "time_boot_ms", Type: "uint32_t"},
		{Name: "roll", Type: "float"},
		{Name: "pitch", Type: "float"},
		{Name: "yaw", Type: "float"},
		{Name: "rollspeed", Type: "float"},
		{Name: "pitchspeed", Type: "float"},
		{Name: "yawspeed", Type: "float"},
	},
}

var MsgGlobalPositionInt = dialect.Message{
	ID:   33,
	Name: "GLOBAL_POSITION_INT",
	Fields: []mav.FieldDef{
		{Name: "time_boot_ms", Type: "uint32_t"},
		{Name: "lat", Type: "int32_t"},
		{Name: "lon", Type: "int32_t"},
		{Name: "alt", Type: "int32_t"},
		{Name: "relative_alt", Type: "int32_t"},
		{Name: "vx", Type: "int16_t"},
		{Name: "vy", Type: "int16_t"},
		{Name: "vz", Type: "int16_t"},
		{Name: "hdg", Type: "uint16_t"},
	},
}

var MsgVFRHUD = dialect.Message{
	ID:   74,
	Name: "VFR_HUD",
	Fields: []mav.FieldDef{
		{Name: "airspeed", Type: "float"},
		{Name: "groundspeed", Type: "float"},
		{Name: "heading", Type: "int16_t"},
		{Name: "throttle", Type: "uint16_t"},
		{Name: "alt", Type: "float"},
		{Name: "climb", Type: "float"},
	},
}

var MsgCommandLong = dialect.Message{
	ID:   76,
	Name: "COMMAND_LONG",
	Fields: []mav.FieldDef{
		{Name: "target_system", Type: "uint8_t"},
		{Name: "target_component", Type: "uint8_t"},
		{Name: "command", Type: "uint16_t"},
		{Name: "confirmation", Type: "uint8_t"},
		{Name: "param1", Type: "float"},
		{Name: "param2", Type: "float"},
		{Name: "param3", Type: "float"},
		{Name: "param4", Type: "float"},
		{Name: "param5", Type: "float"},
		{Name: "param6", Type: "float"},
		{Name: "param7", Type: "float"},
	},
}

var MsgCommandAck = dialect.Message{
	ID:   77,
	Name: "COMMAND_ACK",
	Fields: []mav.FieldDef{
		{Name: "command", Type: "uint16_t"},
		{Name: "result", Type: "uint8_t"},
		{Name: "progress", Type: "uint8_t", Extension: true},
		{Name: "result_param2", Type: "int32_t", Extension: true},
		{Name: "target_system", Type: "uint8_t", Extension: true},
		{Name: "target_component", Type: "uint8_t", Extension: true},
	},
}

var MsgBatteryStatus = dialect.Message{
	ID:   147,
	Name: "BATTERY_STATUS",
	Fields: []mav.FieldDef{
		{Name: "id", Type: "uint8_t"},
		{Name: "battery_function", Type: "uint8_t"},
		{Name: "type", Type: "uint8_t"},
		{Name: "temperature", Type: "int16_t"},
		{Name: "voltages", Type: "uint16_t", ArrayLength: 10},
		{Name: "current_battery", Type: "int16_t"},
		{Name: "current_consumed", Type: "int32_t"},
		{Name: "energy_consumed", Type: "int32_t"},
		{Name: "battery_remaining", Type: "int8_t"},
		{Name: "time_remaining", Type: "int32_t", Extension: true},
		{Name: "charge_state", Type: "uint8_t", Extension: true},
		{Name: "voltages_ext", Type: "uint16_t", ArrayLength: 4, Extension: true},
		{Name: "mode", Type: "uint8_t", Extension: true},
		{Name: "fault_bitmask", Type: "uint32_t", Extension: true},
	},
}

var MsgStatustext = dialect.Message{
	ID:   253,
	Name: "STATUSTEXT",
	Fields: []mav.FieldDef{
		{Name: "severity", Type: "uint8_t"},
		{Name: "text", Type: "char[50]"},
		{Name: "id", Type: "uint16_t", Extension: true},
		{Name: "chunk_seq", Type: "uint8_t", Extension: true},
	},
}

var MsgProtocolVersion = dialect.Message{
	ID:   300,
	Name: "PROTOCOL_VERSION",
	Fields: []mav.FieldDef{
		{Name: "version", Type: "uint16_t"},
		{Name: "min_version", Type: "uint16_t"},
		{Name: "max_version", Type: "uint16_t"},
		{Name: "spec_version_hash", Type: "uint8_t", ArrayLength: 8},
		{Name: "library_version_hash", Type: "uint8_t", ArrayLength: 8},
	},
}
