// Package generator asks an OpenAI-compatible chat completion endpoint for a
// post headline and a matching body.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "gpt-3.5-turbo"

// Default body length bounds, in characters, requested from the model.
const (
	DefaultMinChar = 300
	DefaultMaxChar = 600
)

// Themes are drawn from when Options.Theme is empty.
var Themes = []string{
	"Health and Wellness",
	"Environmental Awareness",
	"Technology Trends",
	"Historical Facts",
	"Financial Literacy",
	"Science Education",
	"Cultural Diversity",
	"Global Issues",
	"Travel Tips and Destinations",
	"Education Insights",
	"Self-Improvement",
	"Food and Nutrition",
	"Entrepreneurship",
	"Parenting Tips",
	"Art and Creativity",
	"Work-Life Balance",
	"Human Rights Advocacy",
	"Sports and Fitness",
	"Mental Health Awareness",
	"Automotive Enthusiasm",
}

// Options configures one generated post.
type Options struct {
	Model      string
	IsInfoTrue bool
	NoHashtag  bool
	// ForceTitle, when set, is used as the headline and no title is requested.
	ForceTitle string
	Theme      string
	MinChar    int
	MaxChar    int
}

// NewOptions draws truthfulness from truePercentage (0..100) and a theme from
// Themes using rng.
func NewOptions(rng *rand.Rand, truePercentage int) Options {
	return Options{
		Model:      DefaultModel,
		IsInfoTrue: rng.Intn(100) < truePercentage,
		Theme:      Themes[rng.Intn(len(Themes))],
		MinChar:    DefaultMinChar,
		MaxChar:    DefaultMaxChar,
	}
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Model) == "" {
		o.Model = DefaultModel
	}
	if o.MinChar <= 0 {
		o.MinChar = DefaultMinChar
	}
	if o.MaxChar <= 0 {
		o.MaxChar = DefaultMaxChar
	}
	if strings.TrimSpace(o.Theme) == "" {
		o.Theme = Themes[0]
	}
	return o
}

// Validate rejects inverted length bounds.
func (o Options) Validate() error {
	if o.MinChar > o.MaxChar {
		return fmt.Errorf("min_char %d exceeds max_char %d", o.MinChar, o.MaxChar)
	}
	return nil
}

func truthWord(isTrue bool) string {
	if isTrue {
		return "true"
	}
	return "fake"
}

// TitlePrompt builds the headline request.
func TitlePrompt(o Options) string {
	return fmt.Sprintf(
		"Generate the title, and only the title, of a social media post. The content must be %s "+
			"and be about %s. The post must be informative. Do not generate titles like '10 proven facts', "+
			"'10 proven benefits' or '10 proven reasons'.",
		truthWord(o.IsInfoTrue), o.Theme,
	)
}

// ContentPrompt builds the body request for headline.
func ContentPrompt(o Options, headline string) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"Generate the content of a social media post based on this title: %s. The content must be %s. "+
			"The post must be informative. Limit the size from %d to %d characters.",
		headline, truthWord(o.IsInfoTrue), o.MinChar, o.MaxChar,
	)
	if o.NoHashtag {
		b.WriteString(" Do not add any hashtag '#' at the end.")
	}
	b.WriteString(" Avoid repeating the title in the content.")
	return b.String()
}
