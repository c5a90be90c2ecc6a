package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	ClaudeSender  = "com.anthropic.claudefordesktop"
	NeutralSender = "com.apple.Terminal"
)

// Origin labels the agent that fired the hook.
func Origin(codex bool) string {
	if codex {
		return "Codex"
	}
	return "Claude"
}

// MessageInput carries everything BuildMessage chooses between.
type MessageInput struct {
	Type    string
	Codex   bool
	Inline  string // text from the payload or the last user turn
	Summary string
	Project string
	// CodexType is the raw "type" field Codex sends with each event.
	CodexType string
}

// BuildMessage returns the notification text and the sound to play.
func BuildMessage(in MessageInput) (string, string) {
	origin := Origin(in.Codex)
	var msg, sound string

	switch in.Type {
	case "idle_prompt":
		sound = "Basso"
		switch {
		case in.Inline != "":
			msg = "Waiting: " + in.Inline
		case in.Summary != "":
			msg = in.Summary + " waiting"
		default:
			msg = origin + " waiting for input"
		}
	case "stop":
		sound = "Glass"
		switch {
		case in.Inline != "":
			msg = "Stopped: " + in.Inline
		case in.Summary != "":
			msg = in.Summary + " stopped"
		default:
			msg = origin + " stopped"
		}
	default:
		sound = "Basso"
		switch {
		case in.Codex && strings.EqualFold(in.CodexType, "agent-turn-complete"):
			if in.Inline != "" {
				msg = "Complete: " + in.Inline
			} else {
				msg = origin + " turn complete"
			}
		case in.Inline != "":
			msg = in.Inline
		case in.Type != "" && in.Type != "unknown":
			msg = origin + " " + in.Type
		default:
			msg = origin + " notification"
		}
	}

	project := ""
	if in.Project != "" {
		project = "[" + in.Project + "] "
	}
	return fmt.Sprintf("%s · %s%s", origin, project, msg), sound
}

// EscapeMessage keeps terminal-notifier from treating a leading bracket as an option list.
func EscapeMessage(msg string) string {
	if strings.HasPrefix(msg, "[") {
		return `\` + msg
	}
	return msg
}

// Icon holds the Codex artwork found on disk.
type Icon struct {
	AppIcon      string
	ContentImage string
}

// CodexIcon looks for the ChatGPT app icon, then a previously converted PNG.
func CodexIcon(home, cacheDir string) Icon {
	for _, p := range []string{
		"/Applications/ChatGPT.app/Contents/Resources/AppIcon.icns",
		filepath.Join(home, "Applications", "ChatGPT.app", "Contents", "Resources", "AppIcon.icns"),
	} {
		if fileExists(p) {
			return Icon{AppIcon: p}
		}
	}
	if png := filepath.Join(cacheDir, "chatgpt-icon.png"); fileExists(png) {
		return Icon{AppIcon: png, ContentImage: png}
	}
	return Icon{}
}

// NotifierArgs builds the terminal-notifier argument list.
func NotifierArgs(msg, sound string, codex bool, icon Icon, group string) []string {
	args := []string{"-message", EscapeMessage(msg), "-sound", sound, "-title", Origin(codex)}
	if icon.AppIcon != "" {
		args = append(args, "-appIcon", icon.AppIcon)
	}
	if icon.ContentImage != "" {
		args = append(args, "-contentImage", icon.ContentImage)
	}
	if group != "" {
		args = append(args, "-group", group)
	}
	sender := ClaudeSender
	if codex {
		sender = NeutralSender
	}
	return append(args, "-sender", sender)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
