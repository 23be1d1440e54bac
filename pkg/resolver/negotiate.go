package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
)

// NegotiationKind is the outcome class of Negotiate.
type NegotiationKind int

const (
	// Unusable means the URI does not lead to JSON-LD.
	Unusable NegotiationKind = iota
	// Usable means the URI itself serves a JSON document.
	Usable
	// Redirect means the URI points at its JSON-LD description elsewhere.
	Redirect
)

func (k NegotiationKind) String() string {
	switch k {
	case Usable:
		return "usable"
	case Redirect:
		return "redirect"
	default:
		return "unusable"
	}
}

// Negotiation is the tri-state result of Negotiate. Target is only set for
// Redirect and is returned verbatim: absolute, "./"-relative or otherwise.
type Negotiation struct {
	Kind   NegotiationKind
	Target string
}

// Negotiate decides how the JSON-LD description of uri is reached.
//
//   - a JSON body (whatever the declared content type) is Usable;
//   - a Link header with rel "describedby" or "alternate" and a JSON-LD type,
//     or an HTML <link> with the same attributes, is a Redirect;
//   - anything else, including non-200 answers, is Unusable.
func (r *Resolver) Negotiate(ctx context.Context, uri string) Negotiation {
	resp, err := r.Fetch(ctx, uri)
	if err != nil || !resp.OK() {
		return Negotiation{Kind: Unusable}
	}

	if json.Valid(bytes.TrimSpace(resp.Body)) && len(bytes.TrimSpace(resp.Body)) > 0 {
		return Negotiation{Kind: Usable}
	}

	for _, l := range parseLinkHeader(resp.Header.Values("Link")) {
		if l.describes() {
			return Negotiation{Kind: Redirect, Target: l.target}
		}
	}

	if isHTML(resp.MediaType()) {
		if target, ok := findHTMLAlternate(resp.Body); ok {
			return Negotiation{Kind: Redirect, Target: target}
		}
	}

	r.logger.Warn("uri does not lead to json-ld", "uri", uri, "contentType", resp.ContentType)
	return Negotiation{Kind: Unusable}
}

type link struct {
	target string
	rel    []string
	typ    string
}

func (l link) describes() bool {
	if !isJSONLDType(l.typ) {
		return false
	}
	for _, rel := range l.rel {
		if rel == "describedby" || rel == "alternate" {
			return true
		}
	}
	return false
}

// parseLinkHeader parses RFC 8288 Link header values. Commas and semicolons
// inside quoted strings or <targets> do not separate links or parameters.
func parseLinkHeader(values []string) []link {
	var out []link
	for _, v := range values {
		for _, value := range splitUnquoted(v, ',') {
			value = strings.TrimSpace(value)
			if !strings.HasPrefix(value, "<") {
				continue
			}
			end := strings.IndexByte(value, '>')
			if end < 0 {
				continue
			}
			l := link{target: strings.TrimSpace(value[1:end])}
			for _, p := range splitUnquoted(value[end+1:], ';') {
				key, val, ok := strings.Cut(strings.TrimSpace(p), "=")
				if !ok {
					continue
				}
				val = unquote(strings.TrimSpace(val))
				switch strings.ToLower(strings.TrimSpace(key)) {
				case "rel":
					l.rel = strings.Fields(strings.ToLower(val))
				case "type":
					l.typ = strings.ToLower(val)
				}
			}
			out = append(out, l)
		}
	}
	return out
}

// splitUnquoted splits s at sep, skipping separators inside quoted strings
// and angle brackets.
func splitUnquoted(s string, sep byte) []string {
	var parts []string
	quoted, escaped, inTarget := false, false, false
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case quoted:
			switch c {
			case '\\':
				escaped = true
			case '"':
				quoted = false
			}
		case inTarget:
			inTarget = c != '>'
		case c == '"':
			quoted = true
		case c == '<':
			inTarget = true
		case c == sep:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

// unquote strips the quotes of a quoted-string and resolves its escapes.
func unquote(v string) string {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}
	var b strings.Builder
	v = v[1 : len(v)-1]
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && i+1 < len(v) {
			i++
		}
		b.WriteByte(v[i])
	}
	return b.String()
}

// findHTMLAlternate looks for <link rel="alternate|describedby" type="application/ld+json" href="...">.
func findHTMLAlternate(body []byte) (string, bool) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	var found string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "link" {
			l := link{}
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "rel":
					l.rel = strings.Fields(strings.ToLower(a.Val))
				case "type":
					l.typ = strings.ToLower(a.Val)
				case "href":
					l.target = strings.TrimSpace(a.Val)
				}
			}
			if l.target != "" && l.describes() {
				found = l.target
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found, found != ""
}

func isJSONLDType(t string) bool {
	t = strings.ToLower(strings.TrimSpace(strings.SplitN(t, ";", 2)[0]))
	return t == "application/ld+json" || t == "application/json"
}

func isHTML(mediaType string) bool {
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
