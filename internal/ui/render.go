package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kjstillabower/meteo-gateway/internal/gateway"
)

const iconBaseURL = "https://openweathermap.org/img/wn/"

const width = 60

// IconURL is the provider image for an icon code.
func IconURL(icon string) string {
	return iconBaseURL + icon + "@2x.png"
}

// Render draws st as text: the error banner, current conditions and the
// forecast strip, each only when there is something to show. lang is the
// gateway's language; it decides how forecast dates are read and labelled.
func Render(w io.Writer, st State, lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.French
	}
	title := cases.Title(tag)
	layout := gateway.DateLayout(lang)
	var b strings.Builder

	if st.Loading {
		b.WriteString("⏳ loading...\n")
	}
	if st.Error != "" {
		fmt.Fprintf(&b, "❌ %s\n", st.Error)
	}

	if cw := st.Weather; cw != nil {
		separator(&b, fmt.Sprintf("%s, %s", cw.City, cw.Country))
		fmt.Fprintf(&b, "%d°  %s\n", cw.Temperature, title.String(cw.Description))
		fmt.Fprintf(&b, "feels like %d°\n", cw.FeelsLike)
		fmt.Fprintf(&b, "💨 wind %g m/s   💧 humidity %d%%   📊 pressure %d hPa\n", cw.WindSpeed, cw.Humidity, cw.Pressure)
		fmt.Fprintf(&b, "icon %s\n", IconURL(cw.Icon))
	}

	if len(st.Forecast) > 0 {
		separator(&b, fmt.Sprintf("%d-day forecast", len(st.Forecast)))
		for _, day := range st.Forecast {
			fmt.Fprintf(&b, "%-10s %-12s %4d°  %-24s 💧%3d%%  💨%5.1f m/s\n",
				title.String(weekday(day.Date, layout, tag)), day.Date, day.Temperature, title.String(day.Description), day.Humidity, day.WindSpeed)
		}
	}

	if b.Len() == 0 {
		b.WriteString("enter a city to see its weather\n")
	}
	_, err = io.WriteString(w, b.String())
	return err
}

var frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

// weekday names the day of a forecast date; empty when the date does not parse.
func weekday(date, layout string, tag language.Tag) string {
	d, err := time.Parse(layout, date)
	if err != nil {
		return ""
	}
	if base, _ := tag.Base(); base.String() == "fr" {
		return frenchWeekdays[d.Weekday()]
	}
	return d.Weekday().String()
}

func separator(b *strings.Builder, title string) {
	pad := (width - len([]rune(title)) - 2) / 2
	if pad < 3 {
		pad = 3
	}
	fmt.Fprintf(b, "%s %s %s\n", strings.Repeat("=", pad), title, strings.Repeat("=", pad))
}
