package go_csi

// CipherParms carries the optional cipher parameters of a security block.
//
// Every field follows the absent/empty convention of the wire format:
// a nil slice means the parameter is absent, a non-nil empty slice means
// it was present with no contents. Serialization emits only non-empty
// fields; deserialization leaves missing fields nil.
type CipherParms struct {
	IV      []byte
	Salt    []byte
	ICV     []byte
	IntSig  []byte
	AAD     []byte
	KeyInfo []byte
}

// Serialize encodes the non-empty parameter fields as concatenated TLV
// records in canonical order: integrity signature, ICV, IV, salt,
// key-info. AAD is never serialized; it is local input to the AEAD
// computation, not block content.
func (p *CipherParms) Serialize() []byte {
	out := make([]byte, 0)
	out = append(out, BuildTLV(PARM_INTSIG, p.IntSig)...)
	out = append(out, BuildTLV(PARM_ICV, p.ICV)...)
	out = append(out, BuildTLV(PARM_IV, p.IV)...)
	out = append(out, BuildTLV(PARM_SALT, p.Salt)...)
	out = append(out, BuildTLV(PARM_KEYINFO, p.KeyInfo)...)
	return out
}

// DeserializeParms decodes the serialized parameter records from buf.
// Each field is extracted independently, so any subset may be absent and
// record order on the wire does not matter. AAD is never decoded; like
// serialization, the wire format does not carry it.
func DeserializeParms(buf []byte) CipherParms {
	return CipherParms{
		IV:      ExtractTLV(PARM_IV, buf),
		Salt:    ExtractTLV(PARM_SALT, buf),
		ICV:     ExtractTLV(PARM_ICV, buf),
		IntSig:  ExtractTLV(PARM_INTSIG, buf),
		KeyInfo: ExtractTLV(PARM_KEYINFO, buf),
	}
}
