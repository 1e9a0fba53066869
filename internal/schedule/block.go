package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dentaldesk/frontdesk/internal/timeofday"
)

// Meta keys the time-block side channel uses inside the schedule store's
// opaque metadata blob.
const (
	MetaTimeBlocks          = "time_blocks"
	MetaTimeBlocksUpdatedAt = "time_blocks_updated_at"
)

// TimeBlock is an ad-hoc unavailability window for one staff member on one
// calendar date. Blocks live in the metadata blob, not as appointment rows.
type TimeBlock struct {
	Assistant string `json:"assistant"`
	Date      string `json:"date"` // YYYY-MM-DD
	Reason    string `json:"reason"`
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// NewTimeBlock builds a normalized block for today.
func NewTimeBlock(assistant string, start, end timeofday.TimeOfDay, reason string, today time.Time) TimeBlock {
	if strings.TrimSpace(reason) == "" {
		reason = "Backend Work"
	}
	return TimeBlock{
		Assistant: strings.ToUpper(strings.TrimSpace(assistant)),
		Date:      today.Format(time.DateOnly),
		Reason:    reason,
		StartTime: start.String(),
		EndTime:   end.String(),
	}
}

// Window returns the block's overnight-normalized minute window. ok=false
// when either bound is unreadable; such blocks are ignored.
func (b TimeBlock) Window() (start, end int, ok bool) {
	s, sOK := timeofday.Parse(b.StartTime)
	e, eOK := timeofday.Parse(b.EndTime)
	if !sOK || !eOK {
		return 0, 0, false
	}
	start, end = timeofday.NormalizeWindow(s, e)
	return start, end, true
}

// EncodeBlocks serializes the block list into the metadata map, stamping the
// update time.
func EncodeBlocks(meta map[string]string, blocks []TimeBlock, now time.Time) error {
	if meta == nil {
		return fmt.Errorf("encode time blocks: nil meta")
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("encode time blocks: %w", err)
	}
	meta[MetaTimeBlocks] = string(data)
	meta[MetaTimeBlocksUpdatedAt] = now.Format(time.RFC3339)
	return nil
}

// DecodeBlocks reads the block list back out of the metadata map. A missing
// or malformed entry decodes as an empty list; blocks are a side channel and
// never block a schedule load.
func DecodeBlocks(meta map[string]string) []TimeBlock {
	raw, ok := meta[MetaTimeBlocks]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var blocks []TimeBlock
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return nil
	}
	return blocks
}
