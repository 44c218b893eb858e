package payments

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Provider identifies the mobile-money channel a notification came from.
type Provider string

const (
	ProviderTelebirr Provider = "Telebirr"
	ProviderCBE      Provider = "CBE"
	ProviderUnknown  Provider = "Unknown"
)

// Notification is the canonical record extracted from a provider SMS.
// Extraction is best effort: a field the grammar cannot find stays at its
// zero value, and validation is the reconciler's job.
type Notification struct {
	Amount    float64
	TxID      string
	Payer     string
	Provider  Provider
	Timestamp time.Time
	Raw       string
}

// Provider grammars. Telebirr credits read like
// "Received 100 Birr from ABEBE (0911234567) Transaction ID: 793LTWS88 Date: 18-06-2025 10:39:07",
// CBE like "Acct 1000*** credited with ETB 500.00 on 18-06-2025 10:39:07 by ABEBE K. Txn ID: FT25255G9SZY".
var (
	telebirrAmount = regexp.MustCompile(`(?i)(?:received|transferred)\s+([\d.]+)\s*Birr`)
	telebirrTxID   = regexp.MustCompile(`(?i)Transaction ID:\s*([A-Z0-9]+)`)
	telebirrPayer  = regexp.MustCompile(`\((\d{10})\)`)

	cbeAmount = regexp.MustCompile(`ETB\s*([\d.]+)`)
	cbeTxID   = regexp.MustCompile(`\b(FT[A-Z0-9]+)`)
	cbePayer  = regexp.MustCompile(`(?i)by\s+([A-Z][A-Z .]*?)(?:\.|,|$)`)

	stamp = regexp.MustCompile(`(\d{2}-\d{2}-\d{4}\s\d{2}:\d{2}:\d{2})`)
)

const stampLayout = "02-01-2006 15:04:05"

// Parse extracts a canonical transaction record from a provider-tagged SMS.
// The provider is chosen by a case-insensitive match on the sender tag; an
// unrecognized sender yields an all-unset record with ProviderUnknown.
func Parse(raw, sender string) Notification {
	n := Notification{Provider: ProviderUnknown, Raw: raw}

	// Amounts may carry thousands separators (1,000.00).
	clean := strings.ReplaceAll(raw, ",", "")
	tag := strings.ToLower(sender)

	switch {
	case strings.Contains(tag, "telebirr") || strings.Contains(tag, "127"):
		n.Provider = ProviderTelebirr
		if m := telebirrAmount.FindStringSubmatch(clean); m != nil {
			n.Amount, _ = strconv.ParseFloat(m[1], 64)
		}
		if m := telebirrTxID.FindStringSubmatch(raw); m != nil {
			n.TxID = m[1]
		}
		if m := telebirrPayer.FindStringSubmatch(raw); m != nil {
			n.Payer = m[1]
		}
	case strings.Contains(tag, "cbe") || strings.Contains(tag, "commercial"):
		n.Provider = ProviderCBE
		if m := cbeAmount.FindStringSubmatch(clean); m != nil {
			n.Amount, _ = strconv.ParseFloat(m[1], 64)
		}
		if m := cbeTxID.FindStringSubmatch(raw); m != nil {
			n.TxID = m[1]
		}
		if m := cbePayer.FindStringSubmatch(raw); m != nil {
			n.Payer = strings.TrimSpace(m[1])
		}
	default:
		return n
	}

	if m := stamp.FindStringSubmatch(raw); m != nil {
		if t, err := time.Parse(stampLayout, m[1]); err == nil {
			n.Timestamp = t
		}
	}
	return n
}

// LooksLikePhone reports whether a payer reference is a local subscriber
// number rather than an account-holder name.
func LooksLikePhone(payer string) bool {
	if len(payer) != 10 || !strings.HasPrefix(payer, "09") {
		return false
	}
	for _, r := range payer {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
