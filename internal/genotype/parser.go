package genotype

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// ParseError reports a malformed input line with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("genotype parse error at line %d: %s", e.Line, e.Message)
}

// Metadata holds free-form header fields extracted from comment lines.
type Metadata struct {
	FileID    string
	Signature string
	Timestamp string
	// Build is the reference genome build the coordinates refer to.
	Build string
}

// DefaultBuild is assumed when the file header does not state a build.
const DefaultBuild = "GRCh37/hg19"

// Parser reads SNP records from a raw genotyping export.
// Supports plain and gzipped input.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	warnings   int
	metadata   Metadata
	logger     *zap.Logger
}

// NewParser opens a genotyping export for parsing.
// Gzip-compressed files are detected by magic bytes and decompressed
// transparently.
func NewParser(path string) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open genotype file: %w", err)
	}

	p := &Parser{file: file, logger: zap.NewNop()}
	p.metadata.Build = DefaultBuild

	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		file.Close()
		return nil, fmt.Errorf("read genotype header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek genotype file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser over an arbitrary stream.
func NewParserFromReader(r io.Reader) *Parser {
	p := &Parser{reader: bufio.NewReader(r), logger: zap.NewNop()}
	p.metadata.Build = DefaultBuild
	return p
}

// SetLogger sets the logger used for per-line warnings.
func (p *Parser) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Next reads the next SNP record, skipping blank lines, comments, and
// the optional column-header line. Malformed lines are counted as
// warnings and skipped. Returns nil, nil at end of input.
func (p *Parser) Next() (*SNP, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read genotype line: %w", err)
		}
		if line == "" && err == io.EOF {
			return nil, nil
		}
		p.lineNumber++

		trimmed := strings.TrimRight(line, "\r\n")
		switch {
		case strings.TrimSpace(trimmed) == "":
			// blank line
		case strings.HasPrefix(trimmed, "#"):
			p.extractMetadata(trimmed)
		case strings.HasPrefix(trimmed, "rsid"):
			// vendor column-header line
		default:
			snp, perr := p.parseLine(trimmed)
			if perr != nil {
				p.warnings++
				p.logger.Warn("skipping malformed genotype line",
					zap.Int("line", p.lineNumber),
					zap.Error(perr))
			} else {
				return snp, nil
			}
		}

		if err == io.EOF {
			return nil, nil
		}
	}
}

// parseLine parses a single tab-separated data line.
func (p *Parser) parseLine(line string) (*SNP, error) {
	fields := strings.SplitN(line, "\t", 5)
	if len(fields) != 4 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected 4 tab-separated fields, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[2]),
		}
	}

	genotype := fields[3]
	if !validGenotype(genotype) {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid genotype: %s", genotype),
		}
	}

	return &SNP{
		Rsid:       fields[0],
		Chromosome: NormalizeChrom(fields[1]),
		Position:   pos,
		Genotype:   genotype,
	}, nil
}

// extractMetadata pulls known header fields out of a comment line.
func (p *Parser) extractMetadata(line string) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	for _, field := range []struct {
		key string
		dst *string
	}{
		{"file_id:", &p.metadata.FileID},
		{"signature:", &p.metadata.Signature},
		{"timestamp:", &p.metadata.Timestamp},
	} {
		if strings.HasPrefix(body, field.key) {
			*field.dst = strings.TrimSpace(strings.TrimPrefix(body, field.key))
			return
		}
	}
	if strings.Contains(body, "build 36") {
		p.metadata.Build = "NCBI36/hg18"
	} else if strings.Contains(body, "build 38") {
		p.metadata.Build = "GRCh38/hg38"
	}
}

// Warnings returns the count of malformed lines skipped so far.
func (p *Parser) Warnings() int {
	return p.warnings
}

// Metadata returns the header fields seen so far. Complete only after
// the comment block has been consumed.
func (p *Parser) Metadata() Metadata {
	return p.metadata
}

// LineNumber returns the current input line number.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and the underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
