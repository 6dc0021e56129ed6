package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cmsattr/cmsattr-go/pkg/cms"
	"github.com/cmsattr/cmsattr-go/pkg/log"
	"github.com/cmsattr/cmsattr-go/pkg/log/mocks"
	"github.com/cmsattr/cmsattr-go/pkg/oid"
	"github.com/cmsattr/cmsattr-go/pkg/snapshot"
	"github.com/cmsattr/cmsattr-go/pkg/store"
)

const nullTemplate = `
name: null-attr
attributes:
  - oid: 1.2.3
    values:
      - {type: raw, value: "0500"}
`

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func fixedTime() time.Time { return time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC) }

func TestRunBuildHex(t *testing.T) {
	path := writeTemplate(t, t.TempDir(), "null.yaml", nullTemplate)

	var buf bytes.Buffer
	require.NoError(t, RunBuild(BuildOptions{Template: path}, &buf))
	assert.Equal(t, "310a300806022a0331020500\n", buf.String())

	buf.Reset()
	require.NoError(t, RunBuild(BuildOptions{Template: path, Implicit: true}, &buf))
	assert.Equal(t, "a00a300806022a0331020500\n", buf.String())
}

func TestRunBuildByName(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "null.yaml", nullTemplate)

	var buf bytes.Buffer
	require.NoError(t, RunBuild(BuildOptions{Template: "null-attr", TemplateDir: dir, Format: "der"}, &buf))
	assert.Equal(t, []byte{0x31, 0x0a, 0x30, 0x08, 0x06, 0x02, 0x2a, 0x03, 0x31, 0x02, 0x05, 0x00}, buf.Bytes())

	err := RunBuild(BuildOptions{Template: "other", TemplateDir: dir}, &buf)
	assert.ErrorContains(t, err, "not found")

	err = RunBuild(BuildOptions{Template: "null-attr"}, &buf)
	assert.ErrorContains(t, err, "not found")
}

func TestRunBuildBuiltin(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunBuild(BuildOptions{Template: "document", Format: "text"}, &buf))
	assert.Contains(t, buf.String(), "(documentName)")
	assert.Contains(t, buf.String(), `BMPString "Untitled"`)
}

func TestRunBuildSnapshotOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "null.yaml", nullTemplate)
	out := filepath.Join(dir, "set.cbor")

	err := RunBuild(BuildOptions{
		Template:    path,
		Format:      "snapshot",
		Output:      out,
		SigningTime: "now",
		Now:         fixedTime,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	set, err := snapshot.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 1, set.Index(oid.SigningTime))
}

func TestRunBuildSigned(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "null.yaml", nullTemplate)
	storePath := filepath.Join(dir, "attrs.db")

	logger := mocks.NewMockLogger(t)
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Source == "template:null-attr"
	})).Return()

	var buf bytes.Buffer
	err := RunBuild(BuildOptions{
		Template:    path,
		Format:      "text",
		ContentType: "data",
		Digest:      "deadbeef",
		SigningTime: "2026-10-17T08:00:00Z",
		StorePath:   storePath,
		StoreName:   "signed",
		Logger:      logger,
		Now:         fixedTime,
	}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "4 attribute(s)")
	assert.Contains(t, out, "[0] 1.2.840.113549.1.9.3 (contentType)")
	assert.Contains(t, out, "[1] 1.2.840.113549.1.9.4 (messageDigest)")
	assert.Contains(t, out, "0: OCTET STRING [4] deadbeef")
	assert.Contains(t, out, "[3] 1.2.840.113549.1.9.5 (signingTime)")

	s, err := store.Open(storePath, store.Options{IsTesting: true})
	require.NoError(t, err)
	defer s.Close()
	set, err := s.Load("signed")
	require.NoError(t, err)
	assert.Equal(t, 4, set.Len())
}

func TestRunBuildPlainEvents(t *testing.T) {
	logger := mocks.NewMockLogger(t)
	var inserts, encodings int
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Source == "template:document" && e.Mutation != nil && e.Mutation.Operation == log.OpInsert
	})).Run(func(log.Event) { inserts++ }).Return().Times(3)
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Encoding != nil && e.Encoding.Format == "der" && e.Encoding.Attributes == 3
	})).Run(func(log.Event) { encodings++ }).Return().Once()

	err := RunBuild(BuildOptions{
		Template:    "document",
		SigningTime: "now",
		Logger:      logger,
		Now:         fixedTime,
	}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 3, inserts)
	assert.Equal(t, 1, encodings)
}

func TestRunBuildPlainRejectionLogged(t *testing.T) {
	dir := t.TempDir()
	twice := writeTemplate(t, dir, "twice.yaml", `
name: twice
attributes:
  - oid: signingTime
    values:
      - {type: time, value: "2026-10-17T08:00:00Z"}
`)

	logger := mocks.NewMockLogger(t)
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Mutation != nil
	})).Return().Once()
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Category == log.CategoryError && e.Level == log.LevelError &&
			e.Error != nil && e.Error.OID == oid.SigningTime
	})).Return().Once()

	err := RunBuild(BuildOptions{Template: twice, SigningTime: "now", Logger: logger, Now: fixedTime}, &bytes.Buffer{})
	assert.ErrorIs(t, err, cms.ErrMultipleSigningTime)
}

func TestRunBuildErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "null.yaml", nullTemplate)
	twice := writeTemplate(t, dir, "twice.yaml", `
name: twice
attributes:
  - oid: signingTime
    values:
      - {type: time, value: "2026-10-17T08:00:00Z"}
`)
	withContentType := writeTemplate(t, dir, "ct.yaml", `
name: ct
attributes:
  - oid: contentType
    values:
      - {type: oid, value: signedData}
`)

	tests := []struct {
		name string
		opts BuildOptions
		want error
		msg  string
	}{
		{name: "no template", opts: BuildOptions{}, want: errMissingArg},
		{name: "bad format", opts: BuildOptions{Template: path, Format: "xml"}, msg: "unknown format"},
		{name: "content type only", opts: BuildOptions{Template: path, ContentType: "data"}, msg: "needs both"},
		{name: "bad digest", opts: BuildOptions{Template: path, ContentType: "data", Digest: "xyz"}, msg: "invalid digest"},
		{name: "bad content type", opts: BuildOptions{Template: path, ContentType: "nope", Digest: "00"}, want: oid.ErrInvalidOID},
		{name: "bad signing time", opts: BuildOptions{Template: path, SigningTime: "tomorrow"}, msg: "invalid signing time"},
		{name: "second signing time", opts: BuildOptions{Template: twice, SigningTime: "now"}, want: cms.ErrMultipleSigningTime},
		{name: "second signing time signed", opts: BuildOptions{Template: twice, SigningTime: "now", ContentType: "data", Digest: "00"}, want: cms.ErrMultipleSigningTime},
		{name: "content type in signed template", opts: BuildOptions{Template: withContentType, ContentType: "data", Digest: "00"}, want: cms.ErrSingleValued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunBuild(tt.opts, &bytes.Buffer{})
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			if tt.msg != "" {
				assert.ErrorContains(t, err, tt.msg)
			}
		})
	}
}
