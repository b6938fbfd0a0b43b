package notifier

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amishk599/internradar/internal/model"
)

const (
	timestampLayout = "2006-01-02 15:04:05 MST"
	companyTagLimit = 20
)

var platformEmoji = map[model.Platform]string{
	model.PlatformAICTE:       "🏛️",
	model.PlatformInternshala: "💼",
}

func emojiFor(p model.Platform) string {
	if e, ok := platformEmoji[p]; ok {
		return e
	}
	return "📋"
}

// Formatter renders postings and cycle reports as Telegram Markdown.
// Formatting never fails: missing values are omitted or shown as N/A.
type Formatter struct {
	loc *time.Location
	now func() time.Time
}

// NewFormatter returns a formatter stamping times in loc (UTC when nil).
func NewFormatter(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{loc: loc, now: time.Now}
}

func (f *Formatter) timestamp() string {
	return f.now().In(f.loc).Format(timestampLayout)
}

// Posting renders the alert for a single posting.
func (f *Formatter) Posting(p model.Posting) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s *New %s Internship!*\n\n", emojiFor(p.Platform), esc(string(p.Platform)))
	fmt.Fprintf(&b, "📋 *Role:* %s\n", orNA(p.Title))
	fmt.Fprintf(&b, "🏢 *Company:* %s\n", orNA(p.Company))
	fmt.Fprintf(&b, "💰 *Stipend:* %s\n", orNA(p.Stipend))
	fmt.Fprintf(&b, "📍 *Location:* %s\n", orNA(p.Location))
	fmt.Fprintf(&b, "⏰ *Duration:* %s", orNA(p.Duration))

	if p.Kind != "" && !strings.EqualFold(p.Kind, "internship") {
		fmt.Fprintf(&b, "\n💼 *Type:* %s", esc(p.Kind))
	}
	if p.StartDate != "" {
		fmt.Fprintf(&b, "\n📅 *Start Date:* %s", esc(p.StartDate))
	}
	if p.ApplyBy != "" {
		fmt.Fprintf(&b, "\n⚡ *Apply By:* %s", esc(p.ApplyBy))
	}
	if p.PostedOn != "" {
		fmt.Fprintf(&b, "\n🕐 *Posted:* %s", esc(p.PostedOn))
	}
	if p.ActivelyHiring {
		b.WriteString("\n🔥 *Actively Hiring!*")
	}

	fmt.Fprintf(&b, "\n\n🔍 Found: %s", f.timestamp())

	fmt.Fprintf(&b, "\n\n#%sInternship", hashtag(string(p.Platform), 0))
	if tag := hashtag(p.Company, companyTagLimit); tag != "" {
		b.WriteString(" #" + tag)
	}
	return b.String()
}

// Summary renders the end-of-cycle report.
func (f *Formatter) Summary(r model.Report) string {
	var b strings.Builder
	b.WriteString("📊 *Internship Radar Summary*\n")

	for _, ps := range r.Platforms {
		fmt.Fprintf(&b, "\n%s *%s:*\n", emojiFor(ps.Platform), esc(string(ps.Platform)))
		if ps.Err != nil {
			fmt.Fprintf(&b, "   ⚠️ Fetch failed: %s\n", esc(ps.Err.Error()))
			continue
		}
		fmt.Fprintf(&b, "   • Found: %d\n", ps.Found)
		fmt.Fprintf(&b, "   • Matching: %d\n", ps.Matched)
		fmt.Fprintf(&b, "   • New: %d\n", ps.New)
		if ps.Failed > 0 {
			fmt.Fprintf(&b, "   • Failed to send: %d\n", ps.Failed)
		}
	}

	total := r.TotalNew()
	b.WriteString("\n🔍 *Total across platforms:*\n")
	fmt.Fprintf(&b, "   • Found: %d\n", r.TotalFound())
	fmt.Fprintf(&b, "   • Matching your keywords: %d\n", r.TotalMatched())
	fmt.Fprintf(&b, "   • New notifications sent: %d\n", total)

	fmt.Fprintf(&b, "\n⏰ Last checked: %s\n\n", f.timestamp())
	if total > 0 {
		b.WriteString("🎉 New opportunities above!")
	} else {
		b.WriteString("😴 No new internships this time")
	}
	return b.String()
}

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return esc(s)
}

// hashtag keeps letters and digits only, truncated to limit runes (0 = no limit).
func hashtag(s string, limit int) string {
	var tag []rune
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		tag = append(tag, r)
		if limit > 0 && len(tag) == limit {
			break
		}
	}
	return string(tag)
}
