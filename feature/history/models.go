package history

import (
	"time"

	"github.com/segmentio/encoding/json"
)

// Entry is one stored reconciliation decision.
type Entry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecordID    string    `gorm:"size:64;index" json:"record_id"`
	NeedsUpdate bool      `json:"needs_update"`
	Applied     bool      `json:"applied"`
	Payload     string    `gorm:"type:text" json:"-"`
	Reasons     string    `gorm:"type:text" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the table holding the entries.
func (Entry) TableName() string {
	return "cover_reconciliations"
}

// MarshalJSON embeds the stored payload and reasons as JSON values.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	return json.Marshal(struct {
		plain
		Payload json.RawMessage `json:"payload"`
		Reasons json.RawMessage `json:"reasons"`
	}{
		plain:   plain(e),
		Payload: rawOr(e.Payload, "{}"),
		Reasons: rawOr(e.Reasons, "[]"),
	})
}

func rawOr(value, fallback string) json.RawMessage {
	if value == "" {
		return json.RawMessage(fallback)
	}
	return json.RawMessage(value)
}
