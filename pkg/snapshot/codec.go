package snapshot

import (
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/cmsattr/cmsattr-go/pkg/cms"
)

// encMode is the CBOR encoder mode for snapshots.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for snapshots.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Encode encodes the attribute set to CBOR bytes.
func Encode(set *cms.AttributeSet) ([]byte, error) {
	snap := FromSet(set)
	return encMode.Marshal(&snap)
}

// Decode decodes CBOR bytes into a new attribute set.
func Decode(data []byte, opts ...cms.SetOption) (*cms.AttributeSet, error) {
	var snap Snapshot
	if err := decMode.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap.Build(opts...)
}

// NewEncoder creates a CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// WriteFile writes the CBOR snapshot of set to path.
func WriteFile(path string, set *cms.AttributeSet) error {
	data, err := Encode(set)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a CBOR snapshot from path.
func ReadFile(path string, opts ...cms.SetOption) (*cms.AttributeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, opts...)
}
