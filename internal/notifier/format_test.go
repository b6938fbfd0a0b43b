package notifier

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amishk599/internradar/internal/model"
)

func fixedFormatter(t *testing.T) *Formatter {
	t.Helper()
	loc := time.FixedZone("IST", 5*3600+1800)
	f := NewFormatter(loc)
	f.now = func() time.Time { return time.Date(2026, 6, 1, 4, 30, 0, 0, time.UTC) }
	return f
}

func TestFormatter_PostingFullTemplate(t *testing.T) {
	f := fixedFormatter(t)
	p := model.Posting{
		Platform:       model.PlatformInternshala,
		Title:          "Machine Learning",
		Company:        "Acme A.I. Labs-Pvt_Ltd",
		Stipend:        "₹ 15,000 /month",
		Location:       "Work From Home",
		Duration:       "3 Months",
		Kind:           "Part time",
		StartDate:      "Immediately",
		ApplyBy:        "30 Jun' 26",
		PostedOn:       "2 days ago",
		ActivelyHiring: true,
	}

	want := "💼 *New Internshala Internship!*\n\n" +
		"📋 *Role:* Machine Learning\n" +
		"🏢 *Company:* Acme A.I. Labs-Pvt\\_Ltd\n" +
		"💰 *Stipend:* ₹ 15,000 /month\n" +
		"📍 *Location:* Work From Home\n" +
		"⏰ *Duration:* 3 Months\n" +
		"💼 *Type:* Part time\n" +
		"📅 *Start Date:* Immediately\n" +
		"⚡ *Apply By:* 30 Jun' 26\n" +
		"🕐 *Posted:* 2 days ago\n" +
		"🔥 *Actively Hiring!*\n\n" +
		"🔍 Found: 2026-06-01 10:00:00 IST\n\n" +
		"#InternshalaInternship #AcmeAILabsPvtLtd"

	assert.Equal(t, want, f.Posting(p))
}

func TestFormatter_PostingMissingFields(t *testing.T) {
	f := fixedFormatter(t)
	msg := f.Posting(model.Posting{Platform: model.PlatformAICTE, Title: "Intern", Kind: "Internship"})

	assert.Contains(t, msg, "🏛️ *New AICTE Internship!*")
	assert.Contains(t, msg, "🏢 *Company:* N/A")
	assert.Contains(t, msg, "💰 *Stipend:* N/A")
	assert.NotContains(t, msg, "*Type:*", "default kind is omitted")
	assert.NotContains(t, msg, "*Start Date:*")
	assert.NotContains(t, msg, "Actively Hiring")
	assert.True(t, strings.HasSuffix(msg, "#AICTEInternship"), "no company tag without a company: %q", msg)
}

func TestFormatter_EscapesMarkdown(t *testing.T) {
	f := fixedFormatter(t)
	msg := f.Posting(model.Posting{Platform: model.PlatformAICTE, Title: "AI_ML *Intern* [remote]"})
	assert.Contains(t, msg, `AI\_ML \*Intern\* \[remote]`)
}

func TestHashtag_TruncatesRunes(t *testing.T) {
	assert.Equal(t, "ÉcoleInternationaleD", hashtag("École Internationale De Paris", 20))
	assert.Equal(t, "", hashtag("--", 20))
	assert.Equal(t, "AICTE", hashtag("AICTE", 0))
}

func TestFormatter_Summary(t *testing.T) {
	f := fixedFormatter(t)
	r := model.Report{Platforms: []model.PlatformStats{
		{Platform: model.PlatformAICTE, Found: 12, Matched: 3, New: 2, Failed: 1},
		{Platform: model.PlatformInternshala, Err: errors.New("HTTP 503")},
	}}

	msg := f.Summary(r)

	assert.True(t, strings.HasPrefix(msg, "📊 *Internship Radar Summary*"))
	assert.Contains(t, msg, "🏛️ *AICTE:*\n   • Found: 12\n   • Matching: 3\n   • New: 2\n   • Failed to send: 1")
	assert.Contains(t, msg, "💼 *Internshala:*\n   ⚠️ Fetch failed: HTTP 503")
	assert.Contains(t, msg, "   • Found: 12\n   • Matching your keywords: 3\n   • New notifications sent: 2")
	assert.Contains(t, msg, "⏰ Last checked: 2026-06-01 10:00:00 IST")
	assert.True(t, strings.HasSuffix(msg, "🎉 New opportunities above!"))
}

func TestFormatter_SummaryNothingNew(t *testing.T) {
	f := fixedFormatter(t)
	msg := f.Summary(model.Report{Platforms: []model.PlatformStats{{Platform: model.PlatformAICTE, Found: 4}}})
	assert.True(t, strings.HasSuffix(msg, "😴 No new internships this time"))
}
