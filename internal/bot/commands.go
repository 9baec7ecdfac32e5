package bot

// Bot command strings.
const (
	CommandStart  = "/start"
	CommandAdmin  = "/admin"
	CommandCancel = "/cancel"
)
