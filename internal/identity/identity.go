// Package identity derives stable short identifiers for mailbox
// messages and classifies them relative to the account owner.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/mailtriage/internal/mail"
)

// ShortIDLen is the length of a derived short identifier in hex characters.
const ShortIDLen = 8

// Class is the result of classifying a message against the account owner.
type Class struct {
	// Internal reports whether the sender belongs to the owner's domain.
	Internal bool

	// Direct reports whether the owner appears in the To or Cc list.
	Direct bool
}

// IDSource returns the string the short ID is derived from, in priority
// order: the Message-ID header, then the protocol-assigned UID, then the
// received timestamp. Exported so the session cache can name the source
// when two different messages hash to the same short ID.
func IDSource(env mail.Envelope) string {
	if env.MessageID != "" {
		return env.MessageID
	}
	if env.UID != 0 {
		return "uid:" + strconv.FormatUint(uint64(env.UID), 10)
	}
	if !env.Received.IsZero() {
		return env.Received.UTC().Format(time.RFC3339)
	}
	return ""
}

// ShortID computes the stable short identifier for a message: the hex
// digest of its ID source truncated to ShortIDLen characters. The same
// message always yields the same value; collisions are possible and left
// to the caller to detect.
func ShortID(env mail.Envelope) string {
	sum := sha256.Sum256([]byte(IDSource(env)))
	return hex.EncodeToString(sum[:])[:ShortIDLen]
}

// Classify determines whether a message is internal (sender address has
// the ownDomain suffix) and direct (ownAddress appears among the To or
// Cc recipients). Comparisons are case-insensitive. Either property is
// false when the inputs needed to establish it are missing.
func Classify(env mail.Envelope, ownAddress, ownDomain string) Class {
	var cls Class

	sender := strings.ToLower(env.Sender.Address)
	if sender != "" && ownDomain != "" {
		cls.Internal = strings.HasSuffix(sender, strings.ToLower(ownDomain))
	}

	own := strings.ToLower(ownAddress)
	if own != "" {
		for _, addr := range env.To {
			if strings.ToLower(addr) == own {
				cls.Direct = true
				break
			}
		}
		if !cls.Direct {
			for _, addr := range env.Cc {
				if strings.ToLower(addr) == own {
					cls.Direct = true
					break
				}
			}
		}
	}

	return cls
}

// DomainSuffix returns the "@domain" suffix of an address, lowercased,
// or the empty string when the address has no domain part.
func DomainSuffix(address string) string {
	i := strings.LastIndex(address, "@")
	if i < 0 || i == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[i:])
}
