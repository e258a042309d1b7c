package client

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// gs2Header says no channel binding; "biws" in the client-final message
// is its base64 form.
const gs2Header = "n,,"

// scramConversation holds the client state across one SCRAM-SHA-256
// exchange (RFC 7677).
type scramConversation struct {
	password    string
	clientNonce string
	firstBare   string
	serverSig   []byte
}

func newScramConversation(user, password string) (*scramConversation, error) {
	raw := make([]byte, 18)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return scramWithNonce(user, password, base64.StdEncoding.EncodeToString(raw)), nil
}

// scramWithNonce lets tests pin the client nonce.
func scramWithNonce(user, password, nonce string) *scramConversation {
	return &scramConversation{
		password:    password,
		clientNonce: nonce,
		firstBare:   "n=" + saslEscape(user) + ",r=" + nonce,
	}
}

// clientFirst is the opening message, gs2 header included.
func (s *scramConversation) clientFirst() string {
	return gs2Header + s.firstBare
}

// clientFinal consumes the server-first message and produces the
// client-final message carrying the proof.
func (s *scramConversation) clientFinal(serverFirst string) (string, error) {
	attrs, err := parseScramMessage(serverFirst)
	if err != nil {
		return "", err
	}
	nonce := attrs["r"]
	if !strings.HasPrefix(nonce, s.clientNonce) || nonce == s.clientNonce {
		return "", Authentication("server nonce does not extend the client nonce")
	}
	salt, err := base64.StdEncoding.DecodeString(attrs["s"])
	if err != nil {
		return "", Authentication("undecodable salt in server-first message")
	}
	iterations, err := strconv.Atoi(attrs["i"])
	if err != nil || iterations < 1 {
		return "", Authenticationf("bad iteration count %q", attrs["i"])
	}

	salted := pbkdf2.Key([]byte(s.password), salt, iterations, sha256.Size, sha256.New)
	clientKey := hmacSum(salted, "Client Key")
	storedKey := sha256.Sum256(clientKey)

	withoutProof := "c=" + base64.StdEncoding.EncodeToString([]byte(gs2Header)) + ",r=" + nonce
	authMessage := s.firstBare + "," + serverFirst + "," + withoutProof

	clientSig := hmacSum(storedKey[:], authMessage)
	proof := make([]byte, len(clientKey))
	for i := range proof {
		proof[i] = clientKey[i] ^ clientSig[i]
	}

	serverKey := hmacSum(salted, "Server Key")
	s.serverSig = hmacSum(serverKey, authMessage)

	return withoutProof + ",p=" + base64.StdEncoding.EncodeToString(proof), nil
}

// verifyServer checks the server-final signature in constant time. A
// mismatch means the server never knew the password.
func (s *scramConversation) verifyServer(serverFinal string) error {
	attrs, err := parseScramMessage(serverFinal)
	if err != nil {
		return err
	}
	if e := attrs["e"]; e != "" {
		return Authenticationf("server rejected authentication: %s", e)
	}
	sig, err := base64.StdEncoding.DecodeString(attrs["v"])
	if err != nil {
		return Authentication("undecodable server signature")
	}
	if subtle.ConstantTimeCompare(sig, s.serverSig) != 1 {
		return Authentication("server signature mismatch")
	}
	return nil
}

func hmacSum(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}

// parseScramMessage splits "k1=v1,k2=v2" attribute lists. Values may
// contain '=' (base64 padding), so only the first '=' splits.
func parseScramMessage(msg string) (map[string]string, error) {
	attrs := map[string]string{}
	for _, part := range strings.Split(msg, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || len(k) != 1 {
			return nil, Authenticationf("malformed SCRAM attribute %q", part)
		}
		attrs[k] = v
	}
	return attrs, nil
}

// saslEscape encodes '=' and ',' in usernames per RFC 5802.
func saslEscape(name string) string {
	return strings.NewReplacer("=", "=3D", ",", "=2C").Replace(name)
}
