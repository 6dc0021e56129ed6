package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/cmsattr/cmsattr-go/pkg/cms"
	"github.com/cmsattr/cmsattr-go/pkg/der"
	"github.com/cmsattr/cmsattr-go/pkg/oid"
	"github.com/cmsattr/cmsattr-go/pkg/snapshot"
)

// ViewOptions controls the view command.
type ViewOptions struct {
	// Raw shows values as hex instead of decoding them.
	Raw bool

	// DER appends the hex DER encoding of the whole set.
	DER bool
}

// FormatSet writes a human-readable listing of set to w.
func FormatSet(w io.Writer, set *cms.AttributeSet, opts ViewOptions) error {
	fmt.Fprintf(w, "%d attribute(s)\n", set.Len())
	for i, a := range set.All() {
		label := a.OID
		if name := oid.Name(a.OID); name != "" {
			label += " (" + name + ")"
		}
		fmt.Fprintf(w, "[%d] %s\n", i, label)
		for j, v := range a.Values.All() {
			if opts.Raw {
				fmt.Fprintf(w, "    %d: %s\n", j, hex.EncodeToString(v))
			} else {
				fmt.Fprintf(w, "    %d: %s\n", j, der.Describe(v))
			}
		}
	}

	if opts.DER {
		out, err := set.MarshalDER()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "DER (%d bytes): %s\n", len(out), hex.EncodeToString(out))
	}
	return nil
}

// RunView prints the attribute set stored in a snapshot file.
func RunView(path string, opts ViewOptions, w io.Writer) error {
	set, err := snapshot.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return FormatSet(w, set, opts)
}
