package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-ledger/constants"
)

// Parties is the resolved counterparty pair of one document.
type Parties struct {
	Buyer  string
	Seller string
}

// PartyResolver picks buyer and seller names among the lines of a document.
type PartyResolver struct {
	lex *Lexicon
}

func NewPartyResolver(lex *Lexicon) *PartyResolver {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &PartyResolver{lex: lex}
}

// Candidates returns the distinct company-looking lines of text in first-seen order.
func (r *PartyResolver) Candidates(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !r.isCandidate(line) {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

func (r *PartyResolver) isCandidate(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < constants.CandidateMinLen || n > constants.CandidateMaxLen {
		return false
	}
	if r.lex.excluded(line) {
		return false
	}
	if !containsAny(line, r.lex.CompanyKeywords) {
		return false
	}
	return !strings.HasSuffix(line, constants.FeeSuffix)
}

// Resolve assigns buyer and seller from the candidate lines, using buyerKeyword to tell
// which line is the buyer. When no line resolves a seller, the text around sellerTaxID is
// searched for a shop-like token.
//
// With more than two company lines the seller is simply the first line that is not the buyer.
func (r *PartyResolver) Resolve(text, buyerKeyword, sellerTaxID string) Parties {
	var p Parties
	candidates := r.Candidates(text)
	notShown := ""
	if buyerKeyword != "" {
		notShown = buyerKeyword + constants.NotShownSuffix
	}

	switch {
	case len(candidates) == 1:
		c := candidates[0]
		if buyerKeyword != "" && strings.Contains(c, buyerKeyword) {
			p.Buyer = c
			break
		}
		p.Seller = c
		p.Buyer = notShown
	case len(candidates) >= 2:
		found := false
		if buyerKeyword != "" {
			for _, c := range candidates {
				if strings.Contains(c, buyerKeyword) {
					p.Buyer = c
					found = true
					break
				}
			}
		}
		for _, c := range candidates {
			if c != p.Buyer {
				p.Seller = c
				break
			}
		}
		if !found {
			p.Buyer = notShown
		}
	}

	if p.Seller == "" && sellerTaxID != "" {
		p.Seller = r.sellerNearTaxID(text, sellerTaxID, p.Buyer)
	}
	return p
}

// sellerNearTaxID scans a window of ContextWindow characters on each side of the tax ID.
// A tax ID at the very start of the text has no preceding label and is not searched.
func (r *PartyResolver) sellerNearTaxID(text, taxID, buyer string) string {
	idx := strings.Index(text, taxID)
	if idx <= 0 {
		return ""
	}
	runes := []rune(text)
	at := utf8.RuneCountInString(text[:idx])
	lo := max(0, at-constants.ContextWindow)
	hi := min(len(runes), at+constants.ContextWindow)
	window := string(runes[lo:hi])

	for _, re := range r.lex.contexts {
		m := re.FindStringSubmatch(window)
		if m == nil {
			continue
		}
		seller := strings.Trim(m[1], constants.ContextTrimChars)
		if seller != buyer && utf8.RuneCountInString(seller) > constants.ContextMinLen {
			return seller
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
