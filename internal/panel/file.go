package panel

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Binary panel file layout: an 8-byte magic, then a gzip stream
// containing a little-endian header (version string, build string,
// sample count, entry count) followed by one fixed-size record per
// entry: chromosome code (1 byte), position (uint32), packed ref/alt
// (1 byte), and one packed genotype byte per anonymous sample.

var fileMagic = [8]byte{'S', 'N', 'P', 'P', 'N', 'L', '1', '\n'}

// LoadError reports a panel that could not be loaded. Callers fall
// back to degraded VCF generation rather than aborting.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load reference panel %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads a reference panel from disk. DuckDB databases are
// detected by extension; anything else is read as the binary format.
func Load(path string) (*Panel, error) {
	if IsDuckDB(path) {
		store, err := OpenStore(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		defer store.Close()
		p, err := store.LoadAll()
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		return p, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	p, err := Read(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return p, nil
}

// Read decodes a binary panel stream.
func Read(r io.Reader) (*Panel, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read panel magic: %w", err)
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("not a reference panel file")
	}

	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open panel stream: %w", err)
	}
	defer zr.Close()
	br := bufio.NewReader(zr)

	version, err := readString(br)
	if err != nil {
		return nil, fmt.Errorf("read panel version: %w", err)
	}
	build, err := readString(br)
	if err != nil {
		return nil, fmt.Errorf("read panel build: %w", err)
	}

	var sampleCount uint8
	if err := binary.Read(br, binary.LittleEndian, &sampleCount); err != nil {
		return nil, fmt.Errorf("read panel sample count: %w", err)
	}
	var entryCount uint32
	if err := binary.Read(br, binary.LittleEndian, &entryCount); err != nil {
		return nil, fmt.Errorf("read panel entry count: %w", err)
	}

	p := New(version, build, int(sampleCount))
	rec := make([]byte, 1+4+1+int(sampleCount))
	for i := uint32(0); i < entryCount; i++ {
		if _, err := io.ReadFull(br, rec); err != nil {
			return nil, fmt.Errorf("read panel entry %d: %w", i, err)
		}
		code := rec[0]
		if code < 1 || code > 25 {
			return nil, fmt.Errorf("panel entry %d: invalid chromosome code %d", i, code)
		}
		pos := uint64(binary.LittleEndian.Uint32(rec[1:5]))
		p.entries[key(code, pos)] = record{
			refAlt:    rec[5],
			genotypes: append([]byte(nil), rec[6:]...),
		}
	}
	return p, nil
}

// Write encodes the panel in the binary file format.
func (p *Panel) Write(w io.Writer) error {
	if _, err := w.Write(fileMagic[:]); err != nil {
		return fmt.Errorf("write panel magic: %w", err)
	}

	zw := gzip.NewWriter(w)
	bw := bufio.NewWriter(zw)

	if err := writeString(bw, p.version); err != nil {
		return err
	}
	if err := writeString(bw, p.build); err != nil {
		return err
	}
	if err := bw.WriteByte(uint8(p.sampleCount)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(p.entries))); err != nil {
		return err
	}

	var posBuf [4]byte
	for k, rec := range p.entries {
		if err := bw.WriteByte(uint8(k >> 32)); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(posBuf[:], uint32(k))
		if _, err := bw.Write(posBuf[:]); err != nil {
			return err
		}
		if err := bw.WriteByte(rec.refAlt); err != nil {
			return err
		}
		if _, err := bw.Write(rec.genotypes); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush panel stream: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close panel stream: %w", err)
	}
	return nil
}

// WriteFile writes the panel to a file in the binary format.
func (p *Panel) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create panel file: %w", err)
	}
	if err := p.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// BuildFromTSV compiles a tab-separated panel source into a Panel.
// Each line is: chromosome, position, ref, alt, then one genotype
// column per anonymous sample. Lines starting with '#' are skipped.
// The sample count is fixed by the first data line.
func BuildFromTSV(r io.Reader, version, build string) (*Panel, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var p *Panel
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			return nil, fmt.Errorf("panel source line %d: expected at least 5 fields, found %d", lineNo, len(fields))
		}
		if p == nil {
			p = New(version, build, len(fields)-4)
		}

		var pos uint64
		if _, err := fmt.Sscanf(fields[1], "%d", &pos); err != nil {
			return nil, fmt.Errorf("panel source line %d: invalid position %q", lineNo, fields[1])
		}
		if len(fields[2]) != 1 || len(fields[3]) != 1 {
			return nil, fmt.Errorf("panel source line %d: ref/alt must be single bases", lineNo)
		}
		e := &Entry{
			Chromosome:      fields[0],
			Position:        pos,
			Ref:             fields[2][0],
			Alt:             fields[3][0],
			SampleGenotypes: fields[4:],
		}
		if err := p.Add(e); err != nil {
			return nil, fmt.Errorf("panel source line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read panel source: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("panel source contains no entries")
	}
	return p, nil
}

func writeString(w *bufio.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
