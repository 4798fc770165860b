package go_csi

// TLV record format: type (1 byte), length (SDNV), value (length bytes).
// Records are concatenated with no padding and no outer length; the
// caller-supplied buffer bounds the scan.

// ExtractTLV linearly scans buf for the first record of itemType and
// returns a copy of its value.
//
// Returns nil when the item is not present, when buf is empty, and when
// any record is malformed (truncated length field, or a length exceeding
// the remaining bytes). A malformed record stops the scan immediately;
// no value is ever assembled from beyond the buffer bound. Records with
// a zero-length value are legal explicit-empty items and are skipped,
// never returned.
func ExtractTLV(itemType ParmID, buf []byte) []byte {
	if len(buf) == 0 {
		return nil
	}

	s := NewStream(buf)
	for s.Len() > 0 {
		t, err := s.ReadByte()
		if err != nil {
			return nil
		}

		length, err := s.ReadSdnv()
		if err != nil {
			log.Debugf("tlv extract: %v", err)
			return nil
		}
		if length > uint64(s.Len()) {
			log.Debugf("tlv extract: length %d exceeds %d remaining bytes", length, s.Len())
			return nil
		}
		if length == 0 {
			continue
		}

		value := s.Next(int(length))
		if len(value) != int(length) {
			return nil
		}
		if ParmID(t) == itemType {
			out := make([]byte, length)
			copy(out, value)
			return out
		}
	}

	return nil
}

// BuildTLV encodes value as a single TLV record of itemType.
// Returns nil if value is empty; an item with no contents cannot be
// built, only decoded.
func BuildTLV(itemType ParmID, value []byte) []byte {
	if len(value) == 0 {
		return nil
	}

	s := NewStream(make([]byte, 0, 1+SdnvLen(uint64(len(value)))+len(value)))
	s.WriteByte(byte(itemType))
	s.WriteSdnv(uint64(len(value)))
	s.Write(value)
	return s.Bytes()
}
