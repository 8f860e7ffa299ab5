package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/m3rciful/pomobot/core/telegram/format"
	"github.com/m3rciful/pomobot/internal/journal"
	"github.com/m3rciful/pomobot/internal/pomodoro"
)

// Messages are Markdown (v1). Names are escaped inside Mention; every other
// dynamic value is escaped here.

func card(title, body, footer string) string {
	var b strings.Builder
	b.WriteString("*")
	b.WriteString(title)
	b.WriteString("*\n")
	b.WriteString(body)
	if footer != "" {
		b.WriteString("\n_")
		b.WriteString(footer)
		b.WriteString("_")
	}
	return b.String()
}

const proceedHint = "Type /start to proceed"

func msgHelp() string {
	lines := []string{
		"*Pomodoro Bot Help*",
		"/pomodoro Initialize your pomodoro",
		"/start Start the pomodoro timer",
		"/skip Skip the current timer",
		"/tl Check remaining time",
		"/state Show your current phase",
		"/finish Finish your pomodoro",
		"/stats Show your session history",
	}
	return strings.Join(lines, "\n")
}

func msgRegistered(d Destination) string {
	return card("Start Pomodoro", d.Mention()+"'s pomodoro is set!", "")
}

func phaseTitle(s pomodoro.State) string {
	switch s {
	case pomodoro.StateWork:
		return "Work"
	case pomodoro.StateBreak:
		return "Break"
	case pomodoro.StateLongBreak:
		return "Long Break"
	case pomodoro.StateStandby:
		return "Standby"
	}
	return "Unknown"
}

func msgStarted(s pomodoro.State, timeLeft string) string {
	return card("Start", "Started "+phaseTitle(s), format.EscapeMD(timeLeft))
}

func msgTimeLeft(timeLeft string) string {
	return card("Time Left", format.EscapeMD(timeLeft), "")
}

func msgSkipped(d Destination) string {
	return card("Skip", "Skipped "+d.Mention()+"'s timer", proceedHint)
}

func msgFinished(d Destination) string {
	return card("Pomodoro Session Done", "Good work "+d.Mention(), "")
}

func msgTimerUp(d Destination) string {
	return card("Timer is Up!", d.Mention()+"'s timer is up", proceedHint)
}

func msgEnded(d Destination) string {
	return card("Pomodoro Ended", d.Mention()+"'s pomodoro ended due to inactivity.", "")
}

func msgUnknownUser(d Destination) string {
	return card("Pomodoro Error", d.Mention()+", Please set your own Pomodoro first", "")
}

func msgInvalidInput(d Destination) string {
	return card("Pomodoro Error", d.Mention()+", can't use that yet!", "")
}

func msgStatus(st pomodoro.Status, settings pomodoro.Settings) string {
	lines := []string{
		"Phase: " + phaseTitle(st.State),
		fmt.Sprintf("Cycle: %d", st.Cycle),
	}
	if st.State == pomodoro.StateStandby {
		lines = append(lines, "Next: "+phaseTitle(st.Next))
		lines = append(lines, fmt.Sprintf("Missed reminders: %d of %d", st.Expiries, settings.InactivityLimit))
	}
	lines = append(lines, format.EscapeMD(st.TimeLeft))
	return card("Pomodoro State", strings.Join(lines, "\n"), "")
}

func msgStats(d Destination, sum journal.Summary, now time.Time) string {
	if sum.Empty() {
		return card("Pomodoro Stats", "No sessions recorded for "+d.Mention()+" yet.", "")
	}
	lines := []string{
		fmt.Sprintf("Sessions: %d", sum.Sessions),
		fmt.Sprintf("Focus blocks completed: %d", sum.FocusCompleted),
		fmt.Sprintf("Breaks: %d", sum.Breaks),
		fmt.Sprintf("Long breaks: %d", sum.LongBreaks),
		fmt.Sprintf("Skips: %d", sum.Skips),
		fmt.Sprintf("Ended by inactivity: %d", sum.Purged),
	}
	if !sum.LastActivity.IsZero() {
		lines = append(lines, fmt.Sprintf("Last activity: %s UTC (%s)",
			sum.LastActivity.UTC().Format(time.DateTime),
			humanize.RelTime(sum.LastActivity, now, "ago", "from now")))
	}
	return card("Pomodoro Stats", strings.Join(lines, "\n"), "")
}

func msgActive(active int, looping bool) string {
	loop := "idle"
	if looping {
		loop = "running"
	}
	return fmt.Sprintf("Active pomodoros: %d\nPoll loop: %s", active, loop)
}

const (
	msgUnknownCommand = "Unknown command. Type /help to see what I can do."
	msgNotYourTimer   = "This timer belongs to someone else"
	msgStatsDisabled  = "Session history is not enabled on this bot."
)
