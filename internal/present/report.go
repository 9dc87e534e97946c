package present

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss" // Bordered summary box
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("2")).
	Padding(0, 1)

// Report is everything shown to the operator once the install finished.
type Report struct {
	Hostname string
	HostID   string
	IP       string
	Duration time.Duration
	SysInfo  string // output of the optional vendor system-info script
}

// Render produces the final report as printable text. The QR block is used
// when qr is available, otherwise the mailto payload is printed in color.
// Rendering never fails: an encoder error degrades to the text fallback.
func (f *Formatter) Render(ctx context.Context, r Report, qr Capability) string {
	var b strings.Builder

	lines := []string{
		labelColor.Sprint("Digital Reef installation complete"),
		"",
		fmt.Sprintf("%s %s", labelColor.Sprint("Host ID: "), f.FormatHostID(r.HostID)),
		fmt.Sprintf("%s %s", labelColor.Sprint("Duration:"), formatDuration(r.Duration)),
		fmt.Sprintf("%s %s", labelColor.Sprint("Connect: "), f.FormatConnectionURL(r.IP)),
	}
	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	// Optional vendor system information
	if info := strings.TrimSpace(r.SysInfo); info != "" {
		b.WriteString("\n")
		b.WriteString(labelColor.Sprint("System information"))
		b.WriteString("\n")
		b.WriteString(info)
		b.WriteString("\n")
	}

	// QR block when an encoder works, the raw payload otherwise
	payload := f.BuildQRPayload(r.Hostname, r.HostID, r.IP)
	b.WriteString("\n")
	if block, ok := f.encode(ctx, payload, qr); ok {
		b.WriteString("Scan to request a license:\n")
		b.WriteString(block)
		b.WriteString("\n")
	} else {
		b.WriteString("Send the following to request a license:\n")
		b.WriteString(mailColor.Sprint(payload))
		b.WriteString("\n")
	}
	return b.String()
}

func (f *Formatter) encode(ctx context.Context, payload string, qr Capability) (string, bool) {
	if !qr.Available() {
		return "", false
	}
	block, err := qr.Encoder.Encode(ctx, payload)
	if err != nil || block == "" {
		return "", false
	}
	return block, true
}

// formatDuration renders elapsed wall time as "1h02m03s", "4m05s" or "6s".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
