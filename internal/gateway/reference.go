package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	hashids "github.com/speps/go-hashids/v2"
)

// ReferenceGenerator produces payment references that are unguessable
// (HMAC tag over the session id) yet short enough for a bank narration.
type ReferenceGenerator struct {
	secret string
	h      *hashids.HashID
}

func NewReferenceGenerator(secret, salt string) (*ReferenceGenerator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 8
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("reference hashid: %w", err)
	}
	return &ReferenceGenerator{secret: secret, h: h}, nil
}

func (g *ReferenceGenerator) Generate(sessionID string) string {
	nonce := uuid.NewString()

	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(fmt.Sprintf("sid:%s|nonce:%s", sessionID, nonce)))

	sum := mac.Sum(nil)
	tag := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum)

	ts, err := g.h.EncodeInt64([]int64{time.Now().UnixMilli()})
	if err != nil {
		// EncodeInt64 only fails on negative input; fall back to a nonce slice.
		ts = strings.ReplaceAll(nonce, "-", "")[:8]
	}

	return fmt.Sprintf("RNT-%s-%s", tag[:4], strings.ToUpper(ts))
}
