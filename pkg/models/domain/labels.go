package domain

import "fmt"

type Dimension string

const (
	DimensionGender Dimension = "gender"
	DimensionAge    Dimension = "age"
)

func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimensionGender, DimensionAge:
		return d, nil
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// LabelSet maps the coded columns of a POS export to readable labels.
// Codes missing from a table map to Unknown.
type LabelSet struct {
	Locale   string
	Weekdays []string // index 0 is code 1
	Genders  []string // index 0 is code 1
	Ages     []string // index 0 is code 1
	Unknown  string
}

var EnglishLabels = LabelSet{
	Locale:   "en",
	Weekdays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	Genders:  []string{"Male", "Female"},
	Ages:     []string{"Child", "Young Adult", "Adult", "Senior"},
	Unknown:  "Unknown",
}

var JapaneseLabels = LabelSet{
	Locale:   "ja",
	Weekdays: []string{"月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日", "日曜日"},
	Genders:  []string{"男性", "女性"},
	Ages:     []string{"子供", "若者", "大人", "実年"},
	Unknown:  "不明",
}

func LabelsForLocale(locale string) (LabelSet, error) {
	switch locale {
	case "", "en":
		return EnglishLabels, nil
	case "ja":
		return JapaneseLabels, nil
	}
	return LabelSet{}, fmt.Errorf("unsupported label locale %q", locale)
}

func (l LabelSet) Weekday(code int) string { return l.lookup(l.Weekdays, code) }
func (l LabelSet) Gender(code int) string  { return l.lookup(l.Genders, code) }
func (l LabelSet) Age(code int) string     { return l.lookup(l.Ages, code) }

// Labels returns the mapped labels of a dimension in code order, Unknown excluded.
func (l LabelSet) Labels(dim Dimension) []string {
	if dim == DimensionAge {
		return l.Ages
	}
	return l.Genders
}

// Rank orders labels of a dimension by code; Unknown sorts last.
func (l LabelSet) Rank(dim Dimension, label string) int {
	labels := l.Labels(dim)
	for i, candidate := range labels {
		if candidate == label {
			return i + 1
		}
	}
	return len(labels) + 1
}

// Label returns the label of the given dimension carried by a row.
func (d Dimension) Label(it DerivedItem) string {
	if d == DimensionAge {
		return it.AgeLabel
	}
	return it.GenderLabel
}

func (l LabelSet) lookup(table []string, code int) string {
	if code < 1 || code > len(table) {
		return l.Unknown
	}
	return table[code-1]
}
