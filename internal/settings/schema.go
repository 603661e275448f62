package settings

// Schema holds the SQL statements for the widget settings store. One
// table of named variables; values are JSON so toggles, strings, and
// structured settings share a single shape.
const Schema = `
CREATE TABLE IF NOT EXISTS settings (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL
);
`

// Default widget settings installed by Seed. Descriptions are markdown;
// the admin report renders them.
var defaults = []struct {
	name        string
	value       any
	description string
}{
	{
		name:        "editor_show_summary_toggle",
		value:       true,
		description: "Show the **summary** widget toggle under rich-text fields.",
	},
	{
		name:        "editor_require_ready",
		value:       true,
		description: "Wait for editor instances to report `ready` before steps interact with them.",
	},
	{
		name:        "editor_default_profile",
		value:       "full",
		description: "Editor profile applied to widgets that do not override it.",
	},
	{
		name:        "editor_track_widget_usage",
		value:       false,
		description: "Record which widgets each scenario touched in the run log.",
	},
}
