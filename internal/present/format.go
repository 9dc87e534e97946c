// Package present renders the outcome of an install for the operator: the host
// id, the connection URL and a QR code carrying a license-request email.
package present

import (
	"fmt"

	"github.com/fatih/color" // Import the fatih/color package for colored console output

	"reef-installer/internal/config"
)

var (
	hostIDColor = color.New(color.FgHiYellow, color.Bold)
	urlColor    = color.New(color.FgHiCyan, color.Underline)
	mailColor   = color.New(color.FgHiGreen)
	labelColor  = color.New(color.Bold)
)

// Formatter decorates install results.
type Formatter struct {
	Port    int
	MailTo  string
	Subject string
}

// NewFormatter builds a Formatter from the present section of the config.
func NewFormatter(cfg config.PresentConfig) *Formatter {
	return &Formatter{Port: cfg.Port, MailTo: cfg.MailTo, Subject: cfg.Subject}
}

// ConnectionURL is the appliance console address for ip.
func (f *Formatter) ConnectionURL(ip string) string {
	return fmt.Sprintf("https://%s:%d", ip, f.Port)
}

// FormatHostID highlights a host id for the console.
func (f *Formatter) FormatHostID(hostID string) string {
	return hostIDColor.Sprint(hostID)
}

// FormatConnectionURL highlights the connection URL for ip.
func (f *Formatter) FormatConnectionURL(ip string) string {
	return urlColor.Sprint(f.ConnectionURL(ip))
}

// BuildQRPayload builds the mailto URI encoded into the QR code. The query is
// not URL-escaped: the body is "<hostname> <hostid> <ip>" verbatim.
func (f *Formatter) BuildQRPayload(hostname, hostID, ip string) string {
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s %s %s", f.MailTo, f.Subject, hostname, hostID, ip)
}
