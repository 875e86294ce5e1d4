package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

func TestProgressPrinter_LinePerReport(t *testing.T) {
	buf := new(bytes.Buffer)
	p := newProgressPrinter(buf)
	assert.False(t, p.inPlace)

	p.Report(domain.SourceKindPost, 25, 50)
	p.Report(domain.SourceKindPost, 50, 50)
	p.Finish()

	assert.Equal(t, "  Discussion posts: 25/50\n  Discussion posts: 50/50\n", buf.String())
}

func TestProgressPrinter_InPlace(t *testing.T) {
	buf := new(bytes.Buffer)
	p := &progressPrinter{out: buf, inPlace: true}

	p.Report(domain.SourceKindDocument, 1, 3)
	p.Report(domain.SourceKindDocument, 2, 3)
	p.Finish()
	p.Finish()

	assert.Equal(t, "\r  Documents: 1/3\r  Documents: 2/3\n", buf.String())
}

func TestProgressPrinter_InPlaceClosesCompletedTable(t *testing.T) {
	buf := new(bytes.Buffer)
	p := &progressPrinter{out: buf, inPlace: true}

	p.Report(domain.SourceKindPost, 2, 2)
	p.Report(domain.SourceKindDocument, 1, 1)

	assert.Equal(t, "\r  Discussion posts: 2/2\n\r  Documents: 1/1\n", buf.String())
}
