package secrets

import (
	"errors"
	"fmt"
)

// The encrypted-file fallback frames its output as
//
//	[salt_len:u8][salt][iv_len:u8][iv][ciphertext]
//
// with salt_len in (0,64], iv_len exactly the AES block size, and at
// least one ciphertext byte. The layout carries no version byte; any
// change to it is a breaking change.

// ErrMalformedEnvelope is returned when on-disk bytes do not parse as a
// valid envelope. It is a decode-shape error, distinct from a decryption
// failure with a well-formed envelope.
var ErrMalformedEnvelope = errors.New("malformed credential envelope")

const (
	maxSaltLen     = 64
	envelopeIVLen  = 16 // AES block size
	envelopeMinLen = 1 + 1 + 1 + envelopeIVLen + 1
)

// encodeEnvelope frames salt, iv and ciphertext into a single byte slice.
func encodeEnvelope(salt, iv, ciphertext []byte) []byte {
	out := make([]byte, 0, 2+len(salt)+len(iv)+len(ciphertext))
	out = append(out, byte(len(salt)))
	out = append(out, salt...)
	out = append(out, byte(len(iv)))
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out
}

// decodeEnvelope parses untrusted on-disk bytes. Every length field is
// validated before the corresponding slice is taken, so truncated or
// garbage input fails with ErrMalformedEnvelope instead of a panic.
func decodeEnvelope(data []byte) (salt, iv, ciphertext []byte, err error) {
	if len(data) < envelopeMinLen {
		return nil, nil, nil, fmt.Errorf("%w: %d bytes is too short", ErrMalformedEnvelope, len(data))
	}

	saltLen := int(data[0])
	if saltLen == 0 || saltLen > maxSaltLen {
		return nil, nil, nil, fmt.Errorf("%w: salt length %d out of range (0,%d]", ErrMalformedEnvelope, saltLen, maxSaltLen)
	}
	rest := data[1:]
	if len(rest) < saltLen {
		return nil, nil, nil, fmt.Errorf("%w: truncated before end of salt", ErrMalformedEnvelope)
	}
	salt, rest = rest[:saltLen], rest[saltLen:]

	if len(rest) < 1 {
		return nil, nil, nil, fmt.Errorf("%w: missing iv length", ErrMalformedEnvelope)
	}
	ivLen := int(rest[0])
	if ivLen != envelopeIVLen {
		return nil, nil, nil, fmt.Errorf("%w: iv length %d, want %d", ErrMalformedEnvelope, ivLen, envelopeIVLen)
	}
	rest = rest[1:]
	if len(rest) < ivLen {
		return nil, nil, nil, fmt.Errorf("%w: truncated before end of iv", ErrMalformedEnvelope)
	}
	iv, rest = rest[:ivLen], rest[ivLen:]

	if len(rest) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no ciphertext", ErrMalformedEnvelope)
	}
	return salt, iv, rest, nil
}
