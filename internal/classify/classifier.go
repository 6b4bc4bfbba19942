// Package classify assigns one of five categories to an email. The primary
// path asks a remote language model; a deterministic keyword classifier backs
// it so classification always produces a category and never returns an error.
package classify

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/k3a/html2text"

	"github.com/PranavAK3704/OneBox/internal/llm"
	"github.com/PranavAK3704/OneBox/internal/models"
)

const (
	systemPrompt = "You are an email classifier. Respond ONLY with one of these categories: " +
		"Interested, Meeting Booked, Not Interested, Spam, Out of Office."
	// maxBodyChars bounds the prompt payload sent to the remote model.
	maxBodyChars = 500
	maxTokens    = 20
	temperature  = 0.2
)

// keywordRules are evaluated in order against the lower-cased subject+body.
// The order is a deliberate tie-break: Interested is checked first so
// mixed-signal text (an auto-reply that also says "interested") lands on
// Interested.
var keywordRules = []struct {
	category models.Category
	pattern  *regexp.Regexp
}{
	{models.CategoryInterested, regexp.MustCompile(`interested|keen|sounds good|looks good|yes please|love to|let's discuss|follow up|connect soon`)},
	{models.CategoryMeetingBooked, regexp.MustCompile(`calendar invite|meeting scheduled|meeting confirmed|zoom link|booked`)},
	{models.CategoryOutOfOffice, regexp.MustCompile(`out of office|ooo|vacation|on leave|away from keyboard|auto.?reply`)},
	{models.CategorySpam, regexp.MustCompile(`unsubscribe|click here|limited offer|act now|congratulations|winner|spam`)},
	{models.CategoryNotInterested, regexp.MustCompile(`not interested|no thanks|pass|decline|stop emailing|not at this time`)},
}

// Classifier classifies emails, remote-first with a local fallback.
// A nil completer puts the classifier in permanent fallback-only mode.
type Classifier struct {
	completer llm.Completer
}

// New creates a classifier. Pass a nil completer when no API credential is
// configured.
func New(completer llm.Completer) *Classifier {
	return &Classifier{completer: completer}
}

// Classify asks the remote model for a category and falls back to the keyword
// classifier when the call fails, the response matches no known label, or no
// remote client is configured. It never fails.
func (c *Classifier) Classify(ctx context.Context, subject, body string) models.Category {
	if c.completer == nil {
		return KeywordClassify(subject, body)
	}

	response, err := c.completer.Complete(ctx, systemPrompt, buildPrompt(subject, body), maxTokens, temperature)
	if err != nil {
		log.Printf("classify: remote classification failed, using keyword fallback: %v", err)
		return KeywordClassify(subject, body)
	}

	if category, ok := matchCategory(response); ok {
		return category
	}

	log.Printf("classify: unrecognized model response %q, using keyword fallback", response)
	return KeywordClassify(subject, body)
}

// buildPrompt produces the user prompt. The body may be raw HTML when the
// message had no plain-text part; markup is stripped first so the truncated
// excerpt is spent on content rather than tags.
func buildPrompt(subject, body string) string {
	if strings.Contains(body, "<") {
		body = html2text.HTML2Text(body)
	}
	if len(body) > maxBodyChars {
		cut := maxBodyChars
		// Back up to a rune boundary so truncation never splits a
		// multi-byte character.
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return fmt.Sprintf(`Classify this email into EXACTLY ONE of the following categories:
- Interested
- Meeting Booked
- Not Interested
- Spam
- Out of Office

Email Subject: %s
Email Body: %s

Return ONLY the category name.`, subject, body)
}

// matchCategory matches the model response against the valid labels as a
// case-insensitive substring, first match wins. Substring matching tolerates
// the model wrapping the label in extra words.
func matchCategory(response string) (models.Category, bool) {
	lowered := strings.ToLower(response)
	for _, category := range models.Categories {
		if strings.Contains(lowered, strings.ToLower(string(category))) {
			return category, true
		}
	}
	return "", false
}

// KeywordClassify is the deterministic local classifier. It lower-cases
// subject and body, tests the keyword rules in priority order, and defaults
// to Not Interested when nothing matches.
func KeywordClassify(subject, body string) models.Category {
	text := strings.ToLower(subject + " " + body)
	for _, rule := range keywordRules {
		if rule.pattern.MatchString(text) {
			return rule.category
		}
	}
	return models.CategoryNotInterested
}
