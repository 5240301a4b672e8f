package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// SignatureHeader carries the processor's signature on webhook deliveries.
const SignatureHeader = "X-Processor-Signature"

const DefaultTolerance = 5 * time.Minute

// Verifier checks webhook authenticity. The header format is
// "t=<unix>,v1=<hex>" where v1 is HMAC-SHA256 over "<t>.<raw body>" with the
// shared secret. Multiple v1 entries are accepted so the processor can
// rotate secrets. The embedded timestamp must fall within the tolerance
// window on either side of now (replay mitigation).
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

// Verify checks the signature header against the exact bytes as transmitted.
// Any re-serialization of the body before this call breaks verification.
func (v *Verifier) Verify(body []byte, header string) error {
	if header == "" {
		return fmt.Errorf("%w: missing %s header", ErrInvalidSignature, SignatureHeader)
	}
	var ts int64
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
			ts = n
		case "v1":
			sigs = append(sigs, val)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return fmt.Errorf("%w: header missing t or v1", ErrInvalidSignature)
	}
	if age := v.now().Sub(time.Unix(ts, 0)); age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}
	expected := computeSignature(v.secret, ts, body)
	for _, s := range sigs {
		if hmac.Equal([]byte(s), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func computeSignature(secret []byte, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign produces a signature header for the given body, as the processor
// would. Used by tests and local tooling.
func Sign(secret string, t time.Time, body []byte) string {
	ts := t.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, computeSignature([]byte(secret), ts, body))
}
