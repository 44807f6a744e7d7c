package gateway

import (
	"golang.org/x/text/language"
)

const isoDateLayout = "2006-01-02"

// dateLayouts mirrors the short numeric date each locale's users expect
// (what a browser prints for toLocaleDateString).
var dateLayouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.French, "02/01/2006"},
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "2.1.2006"},
	{language.Spanish, "2/1/2006"},
	{language.Italian, "2/1/2006"},
	{language.Dutch, "2-1-2006"},
	{language.Portuguese, "02/01/2006"},
	{language.Japanese, "2006/1/2"},
	{language.Chinese, "2006/1/2"},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLayouts))
	for i, l := range dateLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// DateLayout returns the time layout for calendar dates in lang (a BCP 47 tag or
// an OpenWeather code like "fr" or "zh_cn"). Unknown languages get ISO 8601.
func DateLayout(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return isoDateLayout
	}
	_, idx, conf := dateMatcher.Match(tag)
	if conf == language.No {
		return isoDateLayout
	}
	return dateLayouts[idx].layout
}
