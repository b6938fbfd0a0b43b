package model

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Platform names a listing source.
type Platform string

const (
	PlatformAICTE       Platform = "AICTE"
	PlatformInternshala Platform = "Internshala"
)

// Posting is one internship listing scraped from a platform.
// Fields a platform does not provide are left empty.
type Posting struct {
	ID             string   // deterministic, see NewPostingID
	Platform       Platform // source platform
	Title          string
	Company        string
	Location       string
	Stipend        string
	Duration       string
	StartDate      string
	ApplyBy        string
	PostedOn       string // raw site text, e.g. "2 days ago"
	Kind           string // employment type or work mode
	URL            string // details / apply link
	ActivelyHiring bool
	Description    string
}

// NewPostingID derives the identifier for a posting. When a details URL is
// known it is the key; otherwise company, title and location are. Relative
// "posted" texts are never part of the key since they drift between fetches.
func NewPostingID(platform Platform, link, company, title, location string) string {
	var key string
	if canon := canonicalURL(link); canon != "" {
		key = string(platform) + "|" + canon
	} else {
		key = strings.Join([]string{
			string(platform),
			normalizeField(company),
			normalizeField(title),
			normalizeField(location),
		}, "|")
	}
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

func normalizeField(s string) string {
	s = norm.NFKC.String(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// canonicalURL keeps scheme, host, path and the query minus tracking
// parameters. AICTE identifies postings by query (?uid=...), Internshala by
// path; both append utm_* and ref parameters that change between visits.
func canonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	q := u.Query()
	for k := range q {
		if strings.HasPrefix(k, "utm_") || k == "ref" {
			q.Del(k)
		}
	}
	canon := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/")
	if enc := q.Encode(); enc != "" {
		canon += "?" + enc
	}
	return canon
}

// Source fetches the current postings of one platform.
type Source interface {
	Platform() Platform
	FetchPostings(ctx context.Context) ([]Posting, error)
}

// SeenSet tracks posting IDs that were already delivered.
type SeenSet interface {
	Contains(id string) bool
	Add(id string)
	Persist(ctx context.Context) error
}

// SeenBackend stores full snapshots of the seen IDs, oldest first.
type SeenBackend interface {
	Name() string
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
	Close() error
}

// Notifier delivers postings and cycle summaries.
type Notifier interface {
	Notify(ctx context.Context, p Posting) error
	NotifySummary(ctx context.Context, r Report) error
}

// PostingFilter decides whether a posting is relevant.
type PostingFilter interface {
	Match(p Posting) bool
}
