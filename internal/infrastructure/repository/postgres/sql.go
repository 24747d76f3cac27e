package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/valyala/bytebufferpool"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func encodeEvents(events []match.Event) (string, error) {
	if len(events) == 0 {
		return "[]", nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(events); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func decodeEvents(raw []byte) ([]match.Event, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []match.Event{}, nil
	}

	out := make([]match.Event, 0)
	if err := sonic.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeStatistics(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "{}"
	}
	return trimmed
}

func nullTimeToTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	v := value.Time.UTC()
	return &v
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}
