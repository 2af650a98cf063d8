package draw

import (
	"time"

	"github.com/questx-lab/luckydraw/pkg/enum"
)

const DefaultHistoryLimit = 50

type DrawSource string

var (
	DrawSourceFree   = enum.New(DrawSource("free"))
	DrawSourcePoints = enum.New(DrawSource("points"))
)

// DrawRecord is the immutable trace of one draw. Value is what the user really
// got: the credited points for a points prize, the catalog value otherwise.
type DrawRecord struct {
	ID        string     `json:"id" structs:"id"`
	UserID    string     `json:"user_id" structs:"user_id"`
	PrizeID   string     `json:"prize_id" structs:"prize_id"`
	PrizeName string     `json:"prize_name" structs:"prize_name"`
	Value     int64      `json:"value" structs:"value"`
	Kind      PrizeKind  `json:"kind" structs:"kind"`
	Source    DrawSource `json:"source" structs:"source"`
	Cost      int64      `json:"cost" structs:"cost"`
	CreatedAt time.Time  `json:"created_at" structs:"created_at,omitnested"`
}

// History keeps the most recent records first and evicts the oldest ones
// beyond its limit.
type History struct {
	limit   int
	records []DrawRecord
}

// NewHistory expects records ordered from the most recent.
func NewHistory(limit int, records ...DrawRecord) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	if len(records) > limit {
		records = records[:limit]
	}

	h := &History{limit: limit, records: make([]DrawRecord, len(records), limit)}
	copy(h.records, records)
	return h
}

func (h *History) Append(r DrawRecord) {
	if len(h.records) < h.limit {
		h.records = append(h.records, DrawRecord{})
	}

	copy(h.records[1:], h.records[:len(h.records)-1])
	h.records[0] = r
}

func (h *History) Records() []DrawRecord {
	result := make([]DrawRecord, len(h.records))
	copy(result, h.records)
	return result
}

func (h *History) Len() int {
	return len(h.records)
}

func (h *History) Limit() int {
	return h.limit
}
