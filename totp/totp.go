package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

//goland:noinspection SpellCheckingInspection
const codeAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

// State holds the two Steam Guard secrets of a mobile authenticator. The
// identity secret may be empty when mobile confirmations are never needed.
type State struct {
	sharedSecret   []byte
	identitySecret []byte
}

func NewState(sharedSecret string, identitySecret string) (*State, error) {
	sharedKey, err := base64.StdEncoding.DecodeString(sharedSecret)
	if err != nil {
		return nil, eris.Wrap(err, "error decoding shared secret")
	}

	identityKey, err := base64.StdEncoding.DecodeString(identitySecret)
	if err != nil {
		return nil, eris.Wrap(err, "error decoding identity secret")
	}

	return &State{
		sharedSecret:   sharedKey,
		identitySecret: identityKey,
	}, nil
}

func Time(offset time.Duration) time.Time {
	return time.Now().UTC().Add(offset)
}

// AuthCode returns the five character Steam Guard code valid at t.
func (s State) AuthCode(t time.Time) string {
	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(t.Unix())/30)

	mac := hmac.New(sha1.New, s.sharedSecret)
	mac.Write(timeBytes)
	hashcode := mac.Sum(nil)

	// low nibble of the last byte selects the 4 byte window
	start := hashcode[19] & 0xf
	fullCode := binary.BigEndian.Uint32(hashcode[start:start+4]) & (1<<31 - 1)

	code := make([]byte, 5)
	for i := range code {
		code[i] = codeAlphabet[fullCode%uint32(len(codeAlphabet))]
		fullCode /= uint32(len(codeAlphabet))
	}

	return string(code)
}

func (s State) HasIdentitySecret() bool {
	return len(s.identitySecret) > 0
}

// ConfirmationKey signs a mobile confirmation request for tag ("list", "allow", ...).
func (s State) ConfirmationKey(t time.Time, tag string) (string, error) {
	if !s.HasIdentitySecret() {
		return "", eris.New("identity secret is not configured")
	}

	tagBytes := []byte(tag)
	if len(tagBytes) > 32 {
		tagBytes = tagBytes[:32]
	}

	buffer := make([]byte, 8+len(tagBytes))
	binary.BigEndian.PutUint64(buffer, uint64(t.Unix()))
	copy(buffer[8:], tagBytes)

	mac := hmac.New(sha1.New, s.identitySecret)
	if _, err := mac.Write(buffer); err != nil {
		return "", eris.Wrap(err, "error hashing confirmation key")
	}

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func GetDeviceId(steamID string) string {
	checksum := sha1.Sum([]byte(steamID))
	checksumBase64 := base64.StdEncoding.EncodeToString(checksum[:])
	return fmt.Sprintf("android:%s", checksumBase64)
}
