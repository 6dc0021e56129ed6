package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cmsattr/cmsattr-go/pkg/cms"
	"github.com/cmsattr/cmsattr-go/pkg/der"
	"github.com/cmsattr/cmsattr-go/pkg/log"
	"github.com/cmsattr/cmsattr-go/pkg/oid"
	"github.com/cmsattr/cmsattr-go/pkg/snapshot"
	"github.com/cmsattr/cmsattr-go/pkg/store"
	"github.com/cmsattr/cmsattr-go/pkg/template"
)

// BuildOptions controls the build command.
type BuildOptions struct {
	// Template is a template file path, or a template name looked up in
	// TemplateDir.
	Template    string
	TemplateDir string

	// Format is the output format: hex, der, snapshot or text.
	Format string

	// Output is the output file (empty writes to the command writer).
	Output string

	// ContentType and Digest switch to signed-attribute mode: the
	// content-type and message-digest attributes are seeded first.
	// ContentType may be a dotted OID or a friendly name, Digest is hex.
	ContentType string
	Digest      string

	// SigningTime adds a signing-time attribute: "now" or RFC 3339.
	SigningTime string

	// Implicit encodes the set with the [0] IMPLICIT SignerInfo tag.
	Implicit bool

	// StorePath and StoreName also save the result in the store.
	StorePath string
	StoreName string

	Logger log.Logger
	Now    func() time.Time
}

// RunBuild builds an attribute set from a template and writes it out.
func RunBuild(opts BuildOptions, w io.Writer) error {
	if opts.Template == "" {
		return fmt.Errorf("%w: template", errMissingArg)
	}
	if opts.Logger == nil {
		opts.Logger = log.NoopLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	tmpl, err := ResolveTemplate(opts.Template, opts.TemplateDir)
	if err != nil {
		return err
	}

	set, encoded, err := buildSet(tmpl, opts)
	if err != nil {
		return err
	}

	if opts.StoreName != "" {
		s, err := store.Open(opts.StorePath, store.Options{})
		if err != nil {
			return err
		}
		err = s.Put(opts.StoreName, set)
		s.Close()
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", opts.StoreName, err)
		}
	}

	var out []byte
	switch opts.Format {
	case "", "hex":
		out = []byte(hex.EncodeToString(encoded) + "\n")
	case "der":
		out = encoded
	case "snapshot":
		out, err = snapshot.Encode(set)
		if err != nil {
			return err
		}
	case "text":
		var sb strings.Builder
		if err := FormatSet(&sb, set, ViewOptions{}); err != nil {
			return err
		}
		out = []byte(sb.String())
	default:
		return fmt.Errorf("unknown format: %s (supported: hex, der, snapshot, text)", opts.Format)
	}

	if opts.Output != "" {
		return os.WriteFile(opts.Output, out, 0644)
	}
	_, err = w.Write(out)
	return err
}

// ResolveTemplate loads ref as a file, or finds the template named ref in
// dir and then among the built-in templates.
func ResolveTemplate(ref, dir string) (*template.Template, error) {
	if _, err := os.Stat(ref); err == nil {
		return template.Load(ref)
	}
	if dir != "" {
		templates, err := template.LoadDirectory(dir)
		if err != nil {
			return nil, err
		}
		if tmpl, ok := template.Find(templates, ref); ok {
			return tmpl, nil
		}
	}
	if tmpl, err := template.LoadBuiltin(ref); err == nil {
		return tmpl, nil
	}
	return nil, fmt.Errorf("template %s not found", ref)
}

// buildSet returns the built set and its DER encoding. Every mutation and
// the encoding are reported to opts.Logger.
func buildSet(tmpl *template.Template, opts BuildOptions) (*cms.AttributeSet, []byte, error) {
	signingTime, err := parseSigningTime(opts.SigningTime, opts.Now)
	if err != nil {
		return nil, nil, err
	}

	events := []cms.Option{
		cms.WithLogger(opts.Logger),
		cms.WithSource("template:" + tmpl.Name),
		cms.WithClock(opts.Now),
	}

	if opts.ContentType == "" && opts.Digest == "" {
		set := cms.NewLoggedSet(nil, events...)
		if err := tmpl.AddTo(set); err != nil {
			return nil, nil, err
		}
		if signingTime != nil {
			v, err := der.Time(*signingTime)
			if err != nil {
				return nil, nil, err
			}
			if _, err := set.AddValue(oid.SigningTime, v); err != nil {
				return nil, nil, fmt.Errorf("signing time: %w", err)
			}
		}
		var encoded []byte
		if opts.Implicit {
			encoded, err = set.MarshalImplicit(0)
		} else {
			encoded, err = set.MarshalDER()
		}
		return set.Attributes(), encoded, err
	}

	if opts.ContentType == "" || opts.Digest == "" {
		return nil, nil, errors.New("signed mode needs both -content-type and -digest")
	}
	ct, err := oid.Resolve(opts.ContentType)
	if err != nil {
		return nil, nil, err
	}
	digest, err := hex.DecodeString(opts.Digest)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid digest: %w", err)
	}

	b, err := cms.NewSignedAttributesBuilder(ct, digest, events...)
	if err != nil {
		return nil, nil, err
	}
	if err := tmpl.AddTo(b); err != nil {
		return nil, nil, err
	}
	if signingTime != nil {
		if _, err := b.SetSigningTime(*signingTime); err != nil {
			return nil, nil, fmt.Errorf("signing time: %w", err)
		}
	}

	var encoded []byte
	if opts.Implicit {
		encoded, err = b.MarshalImplicit()
	} else {
		encoded, err = b.MarshalDER()
	}
	return b.Attributes(), encoded, err
}

func parseSigningTime(s string, now func() time.Time) (*time.Time, error) {
	switch s {
	case "":
		return nil, nil
	case "now":
		t := now()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid signing time %q: %w", s, err)
	}
	return &t, nil
}
