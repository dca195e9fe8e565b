package export

import (
	"fmt"
	"sort"
	"strings"
)

// ColumnCount is the number of exported columns.
const ColumnCount = 9

// Labels are the header cells, in column order.
type Labels []string

// Validate checks that there is one non-blank label per column.
func (l Labels) Validate() error {
	if len(l) != ColumnCount {
		return fmt.Errorf("export labels: want %d columns, got %d", ColumnCount, len(l))
	}
	for i, label := range l {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("export labels: column %d is blank", i+1)
		}
	}
	return nil
}

var (
	// LabelsEN is the default English header.
	LabelsEN = Labels{
		"Company name", "Identifier", "Phone", "E-mail", "Address",
		"Website", "Industry", "Status", "Last updated",
	}

	// LabelsBG is the Bulgarian header.
	LabelsBG = Labels{
		"Име на фирма", "ЕИК", "Телефон", "E-mail", "Адрес",
		"Уебсайт", "Сфера на дейност", "Статус", "Последна актуализация",
	}
)

var labelSets = map[string]Labels{
	"en": LabelsEN,
	"bg": LabelsBG,
}

// LabelSet looks up a built-in label set by language code.
func LabelSet(name string) (Labels, error) {
	if l, ok := labelSets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	names := make([]string, 0, len(labelSets))
	for n := range labelSets {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown label set %q (want one of %s)", name, strings.Join(names, ", "))
}
