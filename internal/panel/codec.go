package panel

import "fmt"

// Packed encodings shared by the binary file format and the in-memory
// table. Nucleotides use 2 bits (A=0, C=1, G=2, T=3); a ref/alt byte
// holds REF in bits 6-7 and ALT in bits 4-5. A sample genotype byte
// holds allele one in bits 0-1 and allele two in bits 2-3, with
// 00=ref, 01=alt, 10=missing.

const (
	alleleRef     = 0x0
	alleleAlt     = 0x1
	alleleMissing = 0x2
)

func isBase(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}

func encodeNucleotide(b byte) (uint8, bool) {
	switch b {
	case 'A':
		return 0, true
	case 'C':
		return 1, true
	case 'G':
		return 2, true
	case 'T':
		return 3, true
	}
	return 0, false
}

func decodeNucleotide(code uint8) byte {
	return "ACGT"[code&0x03]
}

func encodeRefAlt(ref, alt byte) (byte, error) {
	r, ok := encodeNucleotide(ref)
	if !ok {
		return 0, fmt.Errorf("invalid reference allele %q", string(ref))
	}
	a, ok := encodeNucleotide(alt)
	if !ok {
		return 0, fmt.Errorf("invalid alternate allele %q", string(alt))
	}
	return r<<6 | a<<4, nil
}

// encodeChrom maps a chromosome name to its panel code:
// 1-22 as themselves, X=23, Y=24, MT=25.
func encodeChrom(chrom string) (uint8, bool) {
	switch chrom {
	case "X":
		return 23, true
	case "Y":
		return 24, true
	case "MT":
		return 25, true
	}
	if len(chrom) == 0 || len(chrom) > 2 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(chrom); i++ {
		if chrom[i] < '0' || chrom[i] > '9' {
			return 0, false
		}
		n = n*10 + int(chrom[i]-'0')
	}
	if n < 1 || n > 22 {
		return 0, false
	}
	return uint8(n), true
}

func decodeChrom(code uint8) string {
	switch code {
	case 23:
		return "X"
	case 24:
		return "Y"
	case 25:
		return "MT"
	}
	return fmt.Sprintf("%d", code)
}

func encodeSampleGenotype(gt string) (byte, error) {
	if gt == "./." {
		return alleleMissing | alleleMissing<<2, nil
	}
	if len(gt) != 3 || gt[1] != '/' {
		return 0, fmt.Errorf("invalid genotype %q", gt)
	}
	a1, err := encodeAllele(gt[0])
	if err != nil {
		return 0, fmt.Errorf("invalid genotype %q: %w", gt, err)
	}
	a2, err := encodeAllele(gt[2])
	if err != nil {
		return 0, fmt.Errorf("invalid genotype %q: %w", gt, err)
	}
	return a1 | a2<<2, nil
}

func encodeAllele(c byte) (byte, error) {
	switch c {
	case '0':
		return alleleRef, nil
	case '1':
		return alleleAlt, nil
	case '.':
		return alleleMissing, nil
	}
	return 0, fmt.Errorf("allele %q out of range", string(c))
}

func decodeSampleGenotype(b byte) string {
	a1 := b & 0x03
	a2 := b >> 2 & 0x03
	if a1 == alleleMissing || a2 == alleleMissing {
		return "./."
	}
	return fmt.Sprintf("%d/%d", a1, a2)
}
