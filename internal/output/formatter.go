package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders a finished run
type Formatter interface {
	Name() string
	Format(report *calculation.Report) ([]byte, error)
}

var formatters = map[string]Formatter{
	"console":  ConsoleFormatter{},
	"csv":      RecordsCSV{},
	"json":     JSONFormatter{Pretty: true},
	"yaml":     YAMLFormatter{},
	"markdown": MarkdownFormatter{},
}

var formatAliases = map[string]string{
	"md":      "markdown",
	"yml":     "yaml",
	"records": "csv",
	"summary": "json",
	"text":    "console",
}

// GetFormatterByName returns the formatter registered under name or alias,
// or nil when none matches
func GetFormatterByName(name string) Formatter {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := formatAliases[key]; ok {
		key = alias
	}
	return formatters[key]
}

// AvailableFormatterNames lists the registered formatter names, sorted
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases lists the accepted aliases, sorted
func AvailableFormatAliases() []string {
	aliases := make([]string, 0, len(formatAliases))
	for alias := range formatAliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// WriteFormatted formats report and writes it to a timestamped file in the
// working directory, returning the file name
func WriteFormatted(f Formatter, report *calculation.Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("inss_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

var brazil = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrency formats an amount as Brazilian reais
func FormatCurrency(amount decimal.Decimal) string {
	return brazil.Sprintf("R$ %.2f", amount.Round(2).InexactFloat64())
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
