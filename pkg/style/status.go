package style

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/vary-sh/vary/pkg/types"
)

// CheckStyle returns the appropriate pterm style for a doctor check status
func CheckStyle(status string) *pterm.Style {
	switch status {
	case types.CheckOK:
		return pterm.NewStyle(pterm.FgGreen)
	case types.CheckWarn:
		return pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	case types.CheckFail:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// CheckBadge renders the status label of a doctor check line
func CheckBadge(status string) string {
	label := fmt.Sprintf("%-4s", strings.ToUpper(status))
	return CheckStyle(status).Sprint(label)
}
