package cmd

import (
	"fmt"
	"os"
	"strings"

	"inmofeed/internal/models"
)

// printPropertiesTable prints listings in a human-friendly card layout.
func printPropertiesTable(props []models.Property) {
	for i, p := range props {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, " %d. %s  [%s]\n", i+1, p.Title, p.Source)

		line := "    " + formatPrice(p.Price)
		line += fmt.Sprintf("  |  %d hab, %d baños, %d m²", p.Bedrooms, p.Bathrooms, p.Area)
		fmt.Fprintln(os.Stdout, line)

		if p.Address != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", p.Address)
		}
		if len(p.Features) > 0 {
			var tags []string
			for _, f := range p.Features {
				tags = append(tags, "["+f+"]")
			}
			fmt.Fprintf(os.Stdout, "    %s\n", strings.Join(tags, " "))
		}
		if desc := truncate(p.Description, 100); desc != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", desc)
		}
	}
}

// formatPrice formats a price as "1.234.567 €".
func formatPrice(p float64) string {
	s := fmt.Sprintf("%.0f", p)
	if len(s) <= 3 {
		return s + " €"
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ".") + " €"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
