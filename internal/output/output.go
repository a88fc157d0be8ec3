// Package output writes stitched records as BAM, FASTA or FASTQ.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/googlegenomics/zmw/internal/bamrecord"
	"github.com/googlegenomics/zmw/internal/format"
	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/virtual"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

// Stdout is the path that names standard output, which is written as BAM.
const Stdout = "-"

var errUnknownFormat = errors.New("unknown output format")

// Writer writes stitched records.  Close must be called to flush the output.
type Writer interface {
	Write(*virtual.Record) error
	Close() error
}

// Create creates the file at path and returns a Writer whose format follows
// the extension of path: ".bam" for BAM, and the FASTA and FASTQ extensions
// (optionally followed by ".gz") for text output.  header is the header of the
// subreads file, and is only used for BAM output along with enc.
func Create(path string, header *sam.Header, enc frames.Encoding) (Writer, error) {
	if path == Stdout {
		return NewBAMWriter(nopCloser{os.Stdout}, header, enc)
	}

	var newText func(*xopen.Writer) Writer
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".bam"):
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		w, err := NewBAMWriter(f, header, enc)
		if err != nil {
			f.Close()
			return nil, err
		}
		return w, nil
	case format.IsFastaFilename(path):
		newText = NewFastaWriter
	case format.IsFastqFilename(path):
		newText = NewFastqWriter
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownFormat, path)
	}

	// xopen compresses by extension.
	w, err := xopen.Wopen(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v", path, err)
	}
	return newText(w), nil
}

type bamWriter struct {
	enc *bamrecord.Encoder
	w   *bam.Writer
	wc  io.WriteCloser
}

// NewBAMWriter writes BAM to w, which is closed by Close.  header is the
// header of the subreads file; its read groups are rewritten to declare
// POLYMERASE reads with IPD and pulse width data stored using enc.
func NewBAMWriter(w io.WriteCloser, header *sam.Header, enc frames.Encoding) (Writer, error) {
	encoder, err := bamrecord.NewEncoder(header, enc)
	if err != nil {
		return nil, err
	}
	bw, err := bam.NewWriter(w, encoder.Header(), 1)
	if err != nil {
		return nil, fmt.Errorf("creating BAM writer: %v", err)
	}
	return &bamWriter{encoder, bw, w}, nil
}

func (w *bamWriter) Write(r *virtual.Record) error {
	rec, err := w.enc.Encode(r)
	if err != nil {
		return err
	}
	return w.w.Write(rec)
}

func (w *bamWriter) Close() error {
	if err := w.w.Close(); err != nil {
		w.wc.Close()
		return fmt.Errorf("closing BAM writer: %v", err)
	}
	return w.wc.Close()
}

// textWriter writes FASTA or FASTQ records.
type textWriter struct {
	w     *xopen.Writer
	fastq bool
}

// NewFastaWriter writes FASTA to w, which is closed by Close.  Sequences are
// written on a single line.
func NewFastaWriter(w *xopen.Writer) Writer {
	return &textWriter{w: w}
}

// NewFastqWriter writes FASTQ to w, which is closed by Close.  Records without
// qualities are written with quality 0.
func NewFastqWriter(w *xopen.Writer) Writer {
	return &textWriter{w: w, fastq: true}
}

func (w *textWriter) Write(r *virtual.Record) error {
	var (
		s   *seq.Seq
		err error
	)
	if w.fastq {
		qual := []byte(strings.Repeat("!", len(r.Sequence())))
		if q := r.Qualities(); q != nil && !q.IsMissing() {
			qual = []byte(q.Fastq())
		}
		s, err = seq.NewSeqWithQual(seq.Unlimit, []byte(r.Sequence()), qual)
	} else {
		s, err = seq.NewSeq(seq.Unlimit, []byte(r.Sequence()))
	}
	if err != nil {
		return fmt.Errorf("formatting %s: %v", r.Name(), err)
	}
	name := []byte(r.Name())
	record := &fastx.Record{ID: name, Name: name, Seq: s}
	record.FormatToWriter(w.w, 0)
	return nil
}

func (w *textWriter) Close() error {
	if err := w.w.Close(); err != nil {
		return fmt.Errorf("closing output: %v", err)
	}
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
