package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Login
	"login.title":       "Study Room",
	"login.prompt":      "Pick a nickname to enter the study room",
	"login.placeholder": "Nickname",
	"login.empty":       "Please enter a nickname.",

	// Room header
	"room.welcome":     "Welcome, %s",
	"room.current":     "Current session",
	"room.total":       "Total focused",
	"room.start":       "Start studying",
	"room.pause":       "Pause",
	"room.end":         "End session",
	"room.visual_on":   "Companion: on",
	"room.visual_off":  "Companion: off",
	"room.logged_out":  "Logged out.",
	"room.not_logged":  "Not logged in. Use /login <name>.",
	"room.logged_in":   "Logged in as %s.",
	"room.session_end": "Session ended. Total focused %s.",

	// Timer status (also injected into chat requests)
	"timer.status.active": "Studying, current session %s",
	"timer.status.idle":   "Not studying yet",

	// Tasks
	"todo.title":       "Tasks",
	"todo.placeholder": "Add a task",
	"todo.progress":    "%d/%d done",
	"todo.empty":       "No tasks yet.",
	"todo.added":       "Added task #%d.",
	"todo.not_found":   "No task #%s.",
	"todo.bad_id":      "Task id must be a number: %s",

	// Companion lines shown next to the avatar
	"companion.line.idle": "Press \"Start studying\" and I'll keep you company.",
	"companion.line.1":    "Focus for 25 minutes first, I'm right here with you.",
	"companion.line.2":    "Small progress is still getting stronger.",
	"companion.line.3":    "Go at your own pace, you're doing great.",
	"companion.line.4":    "Remember to take a break after this round.",
	"companion.line.5":    "One more step and we're closer to the goal.",

	// Companion chat
	"companion.title":       "Study buddy",
	"companion.greeting":    "I'm your study buddy. Ask me to plan, review, quiz you, or remind you to stay focused.",
	"companion.persona":     "You are a study companion. Keep answers concise and action-oriented. Prefer clear steps, time-block plans and encouraging feedback.",
	"companion.status":      "User study status: %s",
	"companion.placeholder": "Ask your study buddy...",
	"companion.sending":     "Thinking...",
	"companion.tip.1":       "Plan a 45-minute study sprint for me",
	"companion.tip.2":       "Give me one line of encouragement for where I am now",
	"companion.tip.3":       "I get distracted easily, give me 3 focus tips",

	// Companion config
	"config.title":         "Companion settings",
	"config.endpoint_base": "API Base URL",
	"config.api_key":       "API Key",
	"config.model":         "Model",
	"config.saved":         "%s saved.",
	"config.unknown_field": "Unknown field %q (use base, key or model).",

	// Companion errors
	"companion.error.config":  "Please configure the API Base URL / API Key / Model first.",
	"companion.error.status":  "Request failed (%d) %s",
	"companion.error.empty":   "The endpoint answered but returned no usable reply.",
	"companion.error.generic": "Request failed, please check the network and endpoint settings.",
	"companion.error.busy":    "Still waiting for the previous reply.",
	"companion.fallback":      "I couldn't reach the endpoint. Please check the API address, key or network settings.",

	// REPL
	"repl.help": "Commands: /login <name>, /logout, /start, /pause, /end, /status, /todo add <text>, /todo done <id>, /todo rm <id>, /todos, /config <base|key|model> <value>, /tips, /visual, /quit. Anything else is sent to your study buddy.",

	"repl.unknown_command": "Unknown command %s. Type /help.",
	"repl.bye":             "Bye, keep it up!",

	// Keys (TUI)
	"keys.toggle": "ctrl+s start/pause",
	"keys.end":    "ctrl+e end",
	"keys.focus":  "tab focus",
	"keys.visual": "ctrl+v companion",
	"keys.logout": "ctrl+l logout",
	"keys.quit":   "ctrl+c quit",

	"keys.toggle_todo": "space done",
	"keys.tips":        "f1-f3 quick ask",
	"keys.delete_todo": "del remove",

	// CLI
	"cli.models.none":  "No models returned.",
	"cli.import.done":  "Imported %d value(s) for %s, skipped %d.",
	"cli.status.owner": "User: %s",
	"cli.init.done":    "Wrote %s",

	// Errors
	"error.storage": "Storage error: %s",
}
