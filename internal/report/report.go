package report

import (
	"encoding/json"
	"os"

	"example.com/mavgate/internal/rules"
)

// SaveLinkReportJSON writes the link report to out as indented JSON.
func SaveLinkReportJSON(rep rules.LinkReport, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}
