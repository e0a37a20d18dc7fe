// This file is part of pltvm.

package vm

import (
	"github.com/pltlang/pltvm/internal/diag"
)

// Header offsets, per the fixed 64-word layout (spec section 3).
const (
	HeaderSize = 0x40

	offMagic   = 0x00
	offFeature = 0x01
	offMapping = 0x02
	offReset   = 0x0F
	offTitle   = 0x10
	offDev     = 0x20
	offPub     = 0x30
	fieldWords = 0x10 // Title/Developer/Publisher each occupy 16 words
)

// Magic is the required header magic number, the ASCII trigram "PLT".
const Magic Word = 0x504C54

// MappingROM is the only mapping mode defined by this spec: a single
// read-only block at offset 0 spanning the loaded image.
const MappingROM Word = 0

// Header is the fixed-layout metadata block occupying the first HeaderSize
// words of a ROM image.
type Header struct {
	Magic     Word
	Features  Word
	Mapping   Word
	Reset     Word
	Title     string
	Developer string
	Publisher string
}

// DecodeHeader validates and decodes the header from the first HeaderSize
// words of image. It is fatal (malformed input) if the image is shorter than
// the header, if the magic doesn't match, if feature flags are non-zero, or
// if the mapping mode is anything other than MappingROM.
func DecodeHeader(image []Word) (Header, error) {
	if len(image) < HeaderSize {
		return Header{}, diag.Malformed("header", "ROM is shorter than the header")
	}

	h := Header{
		Magic:    image[offMagic],
		Features: image[offFeature],
		Mapping:  image[offMapping],
		Reset:    image[offReset],
	}
	if h.Magic != Magic {
		return Header{}, diag.Malformed("header", "bad magic number")
	}
	if h.Features != 0 {
		return Header{}, diag.Malformed("header", "unsupported feature flags")
	}
	if h.Mapping != MappingROM {
		return Header{}, diag.Malformed("header", "unknown mapping mode")
	}

	h.Title = decodeCodepoints(image[offTitle : offTitle+fieldWords])
	h.Developer = decodeCodepoints(image[offDev : offDev+fieldWords])
	h.Publisher = decodeCodepoints(image[offPub : offPub+fieldWords])

	return h, nil
}

// decodeCodepoints reads a NUL-terminated sequence of one-codepoint-per-word
// values. Invalid codepoints decode as U+0000 and terminate the string, the
// same behavior as the reference implementation's use of
// char::from_u32(..).unwrap_or('\0').
func decodeCodepoints(words []Word) string {
	runes := make([]rune, 0, len(words))
	for _, w := range words {
		r := rune(w)
		if w > 0x10FFFF || !validRune(r) {
			r = 0
		}
		if r == 0 {
			break
		}
		runes = append(runes, r)
	}
	return string(runes)
}

func validRune(r rune) bool {
	return r >= 0 && r <= 0x10FFFF && !(r >= 0xD800 && r <= 0xDFFF)
}

// EncodeHeader writes h into the first HeaderSize words of out. out must be
// at least HeaderSize words long.
func EncodeHeader(out []Word, h Header) {
	out[offMagic] = Magic
	out[offFeature] = h.Features
	out[offMapping] = h.Mapping
	out[offReset] = h.Reset
	encodeCodepoints(out[offTitle:offTitle+fieldWords], h.Title)
	encodeCodepoints(out[offDev:offDev+fieldWords], h.Developer)
	encodeCodepoints(out[offPub:offPub+fieldWords], h.Publisher)
}

func encodeCodepoints(words []Word, s string) {
	i := 0
	for _, r := range s {
		if i >= len(words)-1 {
			break
		}
		words[i] = Word(r)
		i++
	}
	for ; i < len(words); i++ {
		words[i] = 0
	}
}
