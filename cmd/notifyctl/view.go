package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/notifyd/internal/notify"
	"github.com/llehouerou/notifyd/internal/ui/styles"
)

var now = time.Now

var urgencyNames = [...]string{"low", "normal", "critical"}

func urgencyName(u byte) string {
	if int(u) < len(urgencyNames) {
		return urgencyNames[u]
	}
	return urgencyNames[1]
}

func renderList(entries []notify.Entry, at time.Time) string {
	s := styles.T().S()
	if len(entries) == 0 {
		return s.Subtle.Render("No notifications") + "\n"
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(s.ID.Render(fmt.Sprintf("%4d", e.ID)))
		sb.WriteString(" ")
		sb.WriteString(s.Urgency(e.Urgency).Render(fmt.Sprintf("%-8s", urgencyName(e.Urgency))))
		sb.WriteString(" ")
		sb.WriteString(s.Muted.Render(e.AppName))
		sb.WriteString(" ")
		sb.WriteString(s.Subtle.Render(humanize.RelTime(e.Created(), at, "ago", "from now")))
		if e.Popup {
			sb.WriteString(" ")
			sb.WriteString(s.Popup.Render("●"))
		}
		sb.WriteString("\n      ")
		sb.WriteString(s.Title.Render(e.Summary))
		sb.WriteString("\n")
		if e.Body != "" {
			for line := range strings.SplitSeq(e.Body, "\n") {
				sb.WriteString("      ")
				sb.WriteString(s.Base.Render(line))
				sb.WriteString("\n")
			}
		}
		if len(e.Actions) > 1 {
			sb.WriteString("      ")
			sb.WriteString(s.Subtle.Render("actions: " + formatActions(e.Actions)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// formatActions renders flat id/label pairs as "id (label)".
func formatActions(flat []string) string {
	parts := make([]string, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		id, label := flat[i], flat[i+1]
		if label == "" || label == id {
			parts = append(parts, id)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", id, label))
	}
	return strings.Join(parts, ", ")
}

func renderDND(enabled bool) string {
	s := styles.T().S()
	if enabled {
		return "do-not-disturb: " + s.Warning.Render("on")
	}
	return "do-not-disturb: " + s.Success.Render("off")
}

func renderInfo(info notify.ServerInfo, caps []string) string {
	s := styles.T().S()
	var sb strings.Builder
	row := func(label, value string) {
		sb.WriteString(s.Muted.Render(fmt.Sprintf("%-13s", label)))
		sb.WriteString(s.Base.Render(value))
		sb.WriteString("\n")
	}
	row("name", info.Name)
	row("vendor", info.Vendor)
	row("version", info.Version)
	row("spec version", info.SpecVersion)
	row("capabilities", strings.Join(caps, ", "))
	return sb.String()
}
