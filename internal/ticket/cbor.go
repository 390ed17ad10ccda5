package ticket

import "github.com/fxamacker/cbor/v2"

// encMode is the CBOR encoder used for the compact payload representation.
// SortNone keeps struct fields in declared order, so the same payload
// always serializes to identical bytes.
var encMode cbor.EncMode

// decMode is the CBOR decoder for untrusted payload bytes. The default
// mode rejects trailing garbage, which is what we want: the payload
// portion of a ticket must be exactly one CBOR item.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{Sort: cbor.SortNone}.EncMode()
	if err != nil {
		panic("ticket: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("ticket: CBOR decoder initialization failed: " + err.Error())
	}
}
