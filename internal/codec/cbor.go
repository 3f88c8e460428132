// Package codec encodes stored records as CBOR.
//
// Records are written with Core Deterministic Encoding (RFC 8949 §4.2), so
// the same record always produces the same bytes. Unknown fields are ignored
// on decode, which lets older binaries read records written by newer ones.
package codec

import (
	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v. Trailing bytes after the first data
// item are an error.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
