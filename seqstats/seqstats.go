package seqstats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/klauspost/pgzip"
)

var ErrUnknownFormat = errors.New("seqstats: input is neither fasta nor fastq")

// Stats holds the record count and total number of bases of a sequence file.
type Stats struct {
	Count int
	Bases int
}

// Mean returns the average record length. A file without records has a mean of 0.
func (s Stats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Bases) / float64(s.Count)
}

// Fields returns the count and mean length as summary table fields.
func (s Stats) Fields() []string {
	return []string{strconv.Itoa(s.Count), FormatLength(s.Mean())}
}

// FormatLength renders a length rounded to two decimals without trailing zeros.
func FormatLength(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Collect counts the records and bases in a fasta or fastq file, gzipped or not.
func Collect(path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read counts the records and bases available from r.
func Read(r io.Reader) (Stats, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return Stats{}, err
	}
	if len(magic) == 0 {
		return Stats{}, nil
	}

	var in io.Reader = br
	if bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		gz, err := pgzip.NewReader(br)
		if err != nil {
			return Stats{}, err
		}
		defer gz.Close()
		in = gz
	}

	sbr := bufio.NewReader(in)
	first, err := firstByte(sbr)
	if err == io.EOF {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, err
	}

	var sr seqio.Reader
	switch first {
	case '@':
		sr = fastq.NewReader(sbr, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
	case '>':
		sr = fasta.NewReader(sbr, linear.NewSeq("", nil, alphabet.DNA))
	default:
		return Stats{}, ErrUnknownFormat
	}

	var s Stats
	sc := seqio.NewScanner(sr)
	for sc.Next() {
		s.Count++
		s.Bases += sc.Seq().Len()
	}
	if err := sc.Error(); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// firstByte skips leading whitespace and returns the next byte without consuming it.
func firstByte(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, r.UnreadByte()
	}
}
