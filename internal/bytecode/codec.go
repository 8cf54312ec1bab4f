package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// EncodingVersion is written into every serialized program.
const EncodingVersion = 1

type wireProgram struct {
	Version int     `cbor:"1,keyasint"`
	Code    []int32 `cbor:"2,keyasint"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// MarshalBinary encodes p as canonical CBOR.
func (p *Program) MarshalBinary() ([]byte, error) {
	return encMode.Marshal(wireProgram{Version: EncodingVersion, Code: p.code})
}

// UnmarshalBinary decodes a program produced by MarshalBinary and validates it.
func (p *Program) UnmarshalBinary(data []byte) error {
	var w wireProgram
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	if w.Version != EncodingVersion {
		return fmt.Errorf("bytecode: version %d: %w", w.Version, ErrVersion)
	}
	if err := Validate(w.Code); err != nil {
		return err
	}
	p.code = w.Code
	return nil
}

// Decode is UnmarshalBinary into a new Program.
func Decode(data []byte) (*Program, error) {
	p := new(Program)
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return p, nil
}
