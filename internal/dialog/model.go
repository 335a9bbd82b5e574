package dialog

type State string

const (
	StateIdle State = "idle"

	// Meeting card
	StateEditCounts State = "edit_counts" // +/- buttons or "D H" typed
	StateEditDate   State = "edit_date"   // waiting for a date override

	// Admin
	StateImportFile State = "import_file" // waiting for an .xlsx document
)

// Payload keys
const (
	KeyDeaf    = "deaf"
	KeyHearing = "hearing"
	KeyDate    = "date"
	KeyLastMID = "last_mid"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
