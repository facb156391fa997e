package request

import "fmt"

type TaskQuery struct {
	ID string `form:"id"`
}

func (t *TaskQuery) Valid() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

type HistoryQuery struct {
	Provider string `form:"provider"`
	Limit    int    `form:"limit"`
}

func (h *HistoryQuery) FullWithDefault() {
	if h.Limit <= 0 || h.Limit > 500 {
		h.Limit = 50
	}
}
