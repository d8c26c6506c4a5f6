package mav

import "encoding/binary"

// ParseFrame scans buf for the next complete frame. It returns the frame and
// the number of leading bytes consumed, including any junk before the frame.
//
// A nil frame with consumed == 0 means more data is required; a nil frame
// with consumed > 0 discards bytes that cannot begin a frame. A checksum
// mismatch does not suppress the frame: it is returned with CRCOK unset and
// the stream position advances past it, so the caller re-synchronizes on the
// following bytes.
func ParseFrame(buf []byte, crcTable map[uint32]uint8) (*Frame, int) {
	if len(buf) < minFrameSizeV1 {
		return nil, 0
	}

	offset := -1
	for i, b := range buf {
		if b == MagicV1 || b == MagicV2 {
			offset = i
			break
		}
	}
	if offset < 0 {
		// Nothing resembling a frame start; the buffer is noise.
		return nil, len(buf)
	}

	rest := buf[offset:]
	isV2 := rest[0] == MagicV2
	headerSize := headerSizeV1
	minSize := minFrameSizeV1
	if isV2 {
		headerSize = headerSizeV2
		minSize = minFrameSizeV2
	}
	if len(rest) < minSize {
		return nil, offset
	}

	frame := &Frame{Magic: rest[0], PayloadLength: rest[1]}
	if isV2 {
		frame.IncompatFlags = rest[2]
		frame.CompatFlags = rest[3]
		frame.Sequence = rest[4]
		frame.SystemID = rest[5]
		frame.ComponentID = rest[6]
		frame.MessageID = uint32(rest[7]) | uint32(rest[8])<<8 | uint32(rest[9])<<16
	} else {
		frame.Sequence = rest[2]
		frame.SystemID = rest[3]
		frame.ComponentID = rest[4]
		frame.MessageID = uint32(rest[5])
	}

	payloadLen := int(frame.PayloadLength)
	frameLen := headerSize + payloadLen + checksumSize
	if len(rest) < frameLen {
		return nil, offset
	}

	frame.Payload = append([]byte(nil), rest[headerSize:headerSize+payloadLen]...)
	checksumStart := headerSize + payloadLen
	frame.Checksum = binary.LittleEndian.Uint16(rest[checksumStart:])

	if frame.Signed() {
		if len(rest) < frameLen+signatureSize {
			return nil, offset
		}
		frame.Signature = append([]byte(nil), rest[frameLen:frameLen+signatureSize]...)
		frameLen += signatureSize
	}

	frame.CRCOK = ValidateCRCWithTable(rest[1:checksumStart], frame.MessageID, frame.Checksum, crcTable)
	return frame, offset + frameLen
}

// CreateFrame wraps payload into a wire frame. Version 2 is selected when the
// caller asks for it or the message id does not fit a v1 frame. Flag bytes
// are always emitted as zero: the engine never produces signed frames. The
// returned slice is freshly allocated.
func CreateFrame(msgID uint32, payload []byte, systemID, componentID, sequence uint8, crcExtra uint8, version int) []byte {
	isV2 := version == 2 || msgID > MaxIDV1

	headerSize := headerSizeV1
	if isV2 {
		headerSize = headerSizeV2
	}
	out := make([]byte, headerSize+len(payload)+checksumSize)
	if isV2 {
		out[0] = MagicV2
		out[1] = uint8(len(payload))
		out[2] = 0
		out[3] = 0
		out[4] = sequence
		out[5] = systemID
		out[6] = componentID
		out[7] = uint8(msgID)
		out[8] = uint8(msgID >> 8)
		out[9] = uint8(msgID >> 16)
	} else {
		out[0] = MagicV1
		out[1] = uint8(len(payload))
		out[2] = sequence
		out[3] = systemID
		out[4] = componentID
		out[5] = uint8(msgID)
	}
	copy(out[headerSize:], payload)

	crc := CalculateCRC(out[1:headerSize+len(payload)], crcExtra)
	binary.LittleEndian.PutUint16(out[headerSize+len(payload):], crc)
	return out
}
