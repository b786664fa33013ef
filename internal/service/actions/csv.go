package actions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)
)

// ParseInventoryCSV reads name,quantity,price rows. A first row mentioning
// name or quantity is a header. Numbers are read from their leading digits and
// default to 0; rows without a name are dropped.
func ParseInventoryCSV(r io.Reader) ([]model.NewInventoryItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var items []model.NewInventoryItem
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		if first {
			first = false
			head := strings.ToLower(strings.Join(record, ","))
			if strings.Contains(head, "name") || strings.Contains(head, "quantity") {
				continue
			}
		}

		item := model.NewInventoryItem{Name: strings.TrimSpace(field(record, 0))}
		if item.Name == "" {
			continue
		}
		item.Quantity = parseLeadingInt(field(record, 1))
		item.Price = parseLeadingFloat(field(record, 2))
		items = append(items, item)
	}
	return items, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func parseLeadingInt(s string) int {
	n, err := strconv.Atoi(leadingInt.FindString(s))
	if err != nil {
		return 0
	}
	return n
}

func parseLeadingFloat(s string) float64 {
	f, err := strconv.ParseFloat(leadingFloat.FindString(s), 64)
	if err != nil {
		return 0
	}
	return f
}
