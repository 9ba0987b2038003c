// Package i18n holds the static EN/FR translation table used for month
// names and dashboard labels.
//
// The table is closed: every (month, language) pair and every defined Key
// resolves. Looking up anything outside it is a programming error and panics.
package i18n

import (
	"fmt"
	"slices"
	"strings"
)

// Language is a supported display language tag.
type Language string

const (
	EN Language = "EN"
	FR Language = "FR"
)

// DefaultLanguage is the language a fresh dashboard starts in.
const DefaultLanguage = EN

// Languages lists every supported language in display order.
var Languages = []Language{EN, FR}

// ParseLanguage accepts a language tag case-insensitively.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(Languages, lang) {
		return "", fmt.Errorf("unsupported language %q (allowed: %s)", s, joinLanguages())
	}
	return lang, nil
}

func joinLanguages() string {
	names := make([]string, len(Languages))
	for i, l := range Languages {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == EN || l == FR
}

// Toggle returns the other language.
func (l Language) Toggle() Language {
	if l == FR {
		return EN
	}
	return FR
}

// Key identifies a translatable dashboard label.
type Key string

const (
	KeyLineTitle  Key = "title"
	KeyBarTitle   Key = "bar_title"
	KeyViewPrompt Key = "view_prompt"
	KeyView       Key = "view"
	KeyMonthly    Key = "monthly"
	KeyDaily      Key = "daily"
	KeyMonth      Key = "month"
	KeyLoading    Key = "loading"
	KeyLoadFailed Key = "load_failed"
)

// Keys lists every defined label key.
var Keys = []Key{
	KeyLineTitle,
	KeyBarTitle,
	KeyViewPrompt,
	KeyView,
	KeyMonthly,
	KeyDaily,
	KeyMonth,
	KeyLoading,
	KeyLoadFailed,
}

var monthNames = map[Language][12]string{
	EN: {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	FR: {"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
		"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre"},
}

// The line title carries a %d verb for the dataset year.
var labels = map[Key]map[Language]string{
	KeyLineTitle:  {EN: "Temperature History in %d", FR: "Historique des températures en %d"},
	KeyBarTitle:   {EN: "Monthly Temperature Summary (Bar Chart)", FR: "Résumé mensuel des températures (graphique à barres)"},
	KeyViewPrompt: {EN: "Select how you want to view the temperature data:", FR: "Choisissez comment afficher les données de température :"},
	KeyView:       {EN: "View", FR: "Vue"},
	KeyMonthly:    {EN: "Monthly", FR: "Mensuel"},
	KeyDaily:      {EN: "Daily", FR: "Quotidien"},
	KeyMonth:      {EN: "Month", FR: "Mois"},
	KeyLoading:    {EN: "Loading...", FR: "Chargement..."},
	KeyLoadFailed: {EN: "Temperature data could not be loaded.", FR: "Les données de température n'ont pas pu être chargées."},
}

// MonthName returns the name of month (1..12) in lang.
func MonthName(month int, lang Language) string {
	names, ok := monthNames[lang]
	if !ok {
		panic(fmt.Sprintf("i18n: no month names for language %q", lang))
	}
	if month < 1 || month > 12 {
		panic(fmt.Sprintf("i18n: month %d out of range", month))
	}
	return names[month-1]
}

// MonthNames returns the twelve month names in calendar order.
func MonthNames(lang Language) []string {
	out := make([]string, 12)
	for m := 1; m <= 12; m++ {
		out[m-1] = MonthName(m, lang)
	}
	return out
}

// Label returns the translation of key in lang.
func Label(key Key, lang Language) string {
	byLang, ok := labels[key]
	if !ok {
		panic(fmt.Sprintf("i18n: undefined label key %q", key))
	}
	s, ok := byLang[lang]
	if !ok {
		panic(fmt.Sprintf("i18n: label %q has no %q translation", key, lang))
	}
	return s
}

// LineTitle formats the line chart title for the dataset year.
func LineTitle(year int, lang Language) string {
	return fmt.Sprintf(Label(KeyLineTitle, lang), year)
}

// Labels returns every label in lang keyed by Key, with the line title
// formatted for year.
func Labels(lang Language, year int) map[Key]string {
	out := make(map[Key]string, len(Keys))
	for _, k := range Keys {
		out[k] = Label(k, lang)
	}
	out[KeyLineTitle] = LineTitle(year, lang)
	return out
}
