package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/iburimskiy/particle-field/internal/scene"
	"github.com/iburimskiy/particle-field/internal/sysinfo"
)

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// hudLines renders the overlay text, one entry per line.
func hudLines(fps float64, stats scene.FrameStats, budget int, host sysinfo.Stats, uptime time.Duration) []string {
	budgetText := "unlimited"
	if budget > 0 {
		budgetText = fmt.Sprintf("%d", budget)
		if stats.BudgetHit {
			budgetText += " (hit)"
		}
	}
	return []string{
		fmt.Sprintf("FPS %.1f  up %s", fps, formatDuration(uptime)),
		fmt.Sprintf("particles %d  resets %d  pulled %d", stats.Particles, stats.Resets, stats.Attracted),
		fmt.Sprintf("lines %d  pairs %d  budget %s", stats.Lines, stats.PairChecks, budgetText),
		fmt.Sprintf("cpu %.1f%%  mem %.1f%%", host.CPU, host.Memory),
	}
}

// statusText is the single help line at the bottom of the window.
func statusText(paused, playing bool, lastErr error) string {
	var b strings.Builder
	if paused {
		b.WriteString("Paused - Space to resume")
	} else {
		b.WriteString("Space: pause")
	}
	b.WriteString(" | H: stats | S: snapshot | C: save settings")
	if playing {
		b.WriteString(" | M: change track, P: mute")
	} else {
		b.WriteString(" | M: soundtrack")
	}
	b.WriteString(" | Esc/Q: quit")
	if lastErr != nil {
		b.WriteString(" | Error: " + lastErr.Error())
	}
	return b.String()
}
